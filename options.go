package agentlens

import (
	"net/url"
	"strconv"
)

// Pagination bounds enforced client-side before a request is made.
const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// ListOptions control pagination for list operations. The zero value asks
// for the first DefaultListLimit items.
type ListOptions struct {
	// Limit is the maximum number of items to return (default 50, max 1000)
	Limit int

	// Offset is the number of items to skip
	Offset int
}

// query encodes the options as URL query parameters.
func (o ListOptions) query() url.Values {
	q := url.Values{}
	limit := o.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}
