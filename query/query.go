package query

import (
	"net/url"
	"strconv"
	"strings"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

// SQL returns the ORDER BY direction.
func (o Order) SQL() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

type Option func(*Options)

func WithLimit(limit int) Option {
	return func(o *Options) {
		if limit > 0 {
			o.Limit = limit
		}
	}
}

func WithOrder(order Order) Option {
	return func(o *Options) {
		o.Order = order
	}
}

func WithAscending() Option {
	return func(o *Options) {
		o.Order = Ascending
	}
}

func WithDescending() Option {
	return func(o *Options) {
		o.Order = Descending
	}
}

type Options struct {
	Limit int
	Order Order
}

func DefaultOptions() Options {
	return Options{
		Limit: 100,
		Order: Ascending,
	}
}

func ApplyOptions(options ...Option) Options {
	applied := DefaultOptions()
	for _, option := range options {
		option(&applied)
	}
	return applied
}

// FromURLValues reads the "limit" and "order" query parameters. Invalid
// values are ignored.
func FromURLValues(values url.Values) []Option {
	var options []Option

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil {
		options = append(options, WithLimit(limit))
	}

	switch strings.ToLower(values.Get("order")) {
	case "asc":
		options = append(options, WithAscending())
	case "desc":
		options = append(options, WithDescending())
	}

	return options
}
