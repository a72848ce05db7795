// Package model holds account types.
package model

import "time"

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Priority orders work items.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// Base holds fields shared by every record.
type Base struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
}

// Account is a user account.
//
// Deprecated: use Profile.
type Account struct {
	Base
	// Name is the display name.
	Name     string            `json:"name"`
	Email    *string           `json:"email"`
	Tags     []string          `json:"tags,omitempty"`
	Status   Status            `json:"status"`
	Labels   map[string]string `json:"labels"`
	Avatar   []byte            `json:"avatar,omitempty"`
	Count    int64             `json:"count,string"`
	Timeout  time.Duration     `json:"timeout"`
	Internal string            `json:"-"`
	NoTag    bool
	Events   chan int `json:"events"`

	secret string
}

// Page is one page of results.
type Page[T any] struct {
	Items []T      `json:"items"`
	Next  *Page[T] `json:"next,omitempty"`
}

// Key constrains index keys.
type Key interface {
	~string | ~int
}

// Index maps keys to values.
type Index[K Key, V any] struct {
	First   K            `json:"first"`
	Entries map[string]V `json:"entries"`
}

// ID identifies a record.
type ID string

// Handler processes accounts.
type Handler interface {
	Handle(Account) error
}

type session struct {
	account *Account
}
