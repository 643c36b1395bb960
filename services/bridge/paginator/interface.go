package paginator

import (
	"context"
	"net/url"
)

// APIClient defines the upstream operations the paginator relies on
type APIClient interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	IsInterfaceNil() bool
}
