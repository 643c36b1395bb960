package paginator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("paginator")

const (
	offsetParam = "offset"
	limitParam  = "limit"

	// DefaultPageSize is the page size used by the upstream API
	DefaultPageSize = 100
	// DefaultMaxPages caps a single FetchAll call
	DefaultMaxPages = 1000
)

type paginator struct {
	client   APIClient
	pageSize int
	maxPages int
}

// NewPaginator creates a paginator that walks offset/limit list endpoints
func NewPaginator(apiClient APIClient, pageSize int, maxPages int) (*paginator, error) {
	if check.IfNil(apiClient) {
		return nil, errors.New("nil API client")
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}

	return &paginator{
		client:   apiClient,
		pageSize: pageSize,
		maxPages: maxPages,
	}, nil
}

// FetchAll requests consecutive pages until one comes back with fewer entries than the page size. The entries are
// returned in response order. An invalid or non-array page aborts the walk with client.ErrShape.
func (p *paginator) FetchAll(ctx context.Context, path string, fixedParams url.Values) ([]gjson.Result, error) {
	var records []gjson.Result

	for page := 0; page < p.maxPages; page++ {
		offset := page * p.pageSize

		query := make(url.Values, len(fixedParams)+2)
		for k, v := range fixedParams {
			query[k] = append([]string(nil), v...)
		}
		query.Set(offsetParam, strconv.Itoa(offset))
		query.Set(limitParam, strconv.Itoa(p.pageSize))

		body, err := p.client.Get(ctx, path, query)
		if err != nil {
			return nil, err
		}

		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("%w: %s page at offset %d is not valid JSON", client.ErrShape, path, offset)
		}

		parsed := gjson.ParseBytes(body)
		if !parsed.IsArray() {
			return nil, fmt.Errorf("%w: %s page at offset %d is not a JSON array", client.ErrShape, path, offset)
		}

		entries := parsed.Array()
		records = append(records, entries...)

		if len(entries) < p.pageSize {
			log.Trace("pagination finished", "path", path, "pages", page+1, "records", len(records))
			return records, nil
		}
	}

	return nil, fmt.Errorf("%w: %s returned more than %d full pages", client.ErrShape, path, p.maxPages)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *paginator) IsInterfaceNil() bool {
	return p == nil
}
