package testsCommon

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
)

// PaginatorStub -
type PaginatorStub struct {
	FetchAllHandler func(ctx context.Context, path string, fixedParams url.Values) ([]gjson.Result, error)
}

// FetchAll -
func (stub *PaginatorStub) FetchAll(ctx context.Context, path string, fixedParams url.Values) ([]gjson.Result, error) {
	if stub.FetchAllHandler != nil {
		return stub.FetchAllHandler(ctx, path, fixedParams)
	}

	return make([]gjson.Result, 0), nil
}

// IsInterfaceNil -
func (stub *PaginatorStub) IsInterfaceNil() bool {
	return stub == nil
}
