// Package query builds the filtered, paginated listings shared by every entity.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

// Params captures list query parameters as received from the client.
type Params struct {
	Search   string
	AgeRange string
	Limit    int
	Offset   int
}

// FromValues reads search, ageRange, limit and offset from URL query values.
// Non-numeric limit or offset values are treated as absent.
func FromValues(values url.Values) Params {
	return Params{
		Search:   values.Get("search"),
		AgeRange: values.Get("ageRange"),
		Limit:    atoi(values.Get("limit")),
		Offset:   atoi(values.Get("offset")),
	}.Normalize()
}

// Normalize applies pagination defaults and bounds.
func (p Params) Normalize() Params {
	p.Search = strings.TrimSpace(p.Search)
	p.AgeRange = strings.TrimSpace(p.AgeRange)
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Result is one page of items together with the unpaginated match count.
type Result[T any] struct {
	Items []T
	Total int
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
