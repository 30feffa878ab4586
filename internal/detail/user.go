// Package detail resolves single records for the detail views.
package detail

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/internal/model"
)

// ErrUserNotFound is returned when no users record carries the requested key.
var ErrUserNotFound = errors.Wrap(nestsearch.ErrNotFound, "user not found")

// LookupUser fetches the users record whose key is key and strips the index
// prefix from its fields.
func LookupUser(ctx context.Context, opener nestsearch.Opener, key string) (*model.UserDetails, error) {
	if key == "" {
		return nil, ErrUserNotFound
	}

	page, err := opener.Open(model.IndexUsers).Search(ctx, key,
		nestsearch.WithHitsPerPage(1),
		nestsearch.Eq("idx_key", key),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up user %q", key)
	}
	if len(page.Hits) == 0 {
		return nil, ErrUserNotFound
	}

	user, err := nestsearch.DecodeFields[model.UserDetails](nestsearch.StripIndexPrefix(page.Hits[0].Fields))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode user %q", key)
	}
	return &user, nil
}
