package tspoet

import (
	"maps"
)

// TagKey identifies a caller-attached tag. Callers pick their own keys,
// typically one per value type they attach.
type TagKey string

// Tags holds caller-attached metadata on builders and specs. The generator
// never reads tags.
type Tags map[TagKey]any

// Get returns the value stored under key.
func (t Tags) Get(key TagKey) (any, bool) {
	v, ok := t[key]
	return v, ok
}

func (t Tags) clone() Tags {
	if len(t) == 0 {
		return Tags{}
	}
	return maps.Clone(t)
}

// TagValue returns the tag stored under key if it holds a T.
func TagValue[T any](tags Tags, key TagKey) (T, bool) {
	v, ok := tags[key]
	if !ok {
		var zero T
		return zero, false
	}
	tv, ok := v.(T)
	return tv, ok
}
