// Package api refers to types of another package.
package api

import "github.com/broady/tspoet/gosource/testdata/model"

// Status reports service health.
type Status struct {
	Code    int          `json:"code"`
	Account model.Status `json:"account"`
}

// ListResponse is a page of accounts.
type ListResponse struct {
	Accounts model.Page[model.Account] `json:"accounts"`
	Health   Status                    `json:"health"`
}
