// Package recommendations talks to the external recommendation provider and
// owns the request lifecycle for the active user.
package recommendations

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/models"
)

// Provider returns up to topN ranked recommendations for a user, best first.
// An empty slice with a nil error means the provider has nothing for the user.
type Provider interface {
	Recommend(ctx context.Context, userID, topN int) ([]models.Item, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, userID, topN int) ([]models.Item, error)

func (f ProviderFunc) Recommend(ctx context.Context, userID, topN int) ([]models.Item, error) {
	return f(ctx, userID, topN)
}

// ErrMalformedPayload is returned when the provider answers with something
// that isn't a recommendation envelope.
var ErrMalformedPayload = errors.New("malformed recommendation payload")

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch recommendations (status: %d)", e.StatusCode)
}

// clientError reports whether the provider rejected the request itself, as
// opposed to being unhealthy.
func (e *StatusError) clientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}
