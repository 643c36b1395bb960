package testsCommon

import (
	"context"
	"net/url"
)

// APIClientStub -
type APIClientStub struct {
	GetHandler  func(ctx context.Context, path string, query url.Values) ([]byte, error)
	PostHandler func(ctx context.Context, path string) error
}

// Get -
func (stub *APIClientStub) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if stub.GetHandler != nil {
		return stub.GetHandler(ctx, path, query)
	}

	return []byte(`{}`), nil
}

// Post -
func (stub *APIClientStub) Post(ctx context.Context, path string) error {
	if stub.PostHandler != nil {
		return stub.PostHandler(ctx, path)
	}

	return nil
}

// IsInterfaceNil -
func (stub *APIClientStub) IsInterfaceNil() bool {
	return stub == nil
}
