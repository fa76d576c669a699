package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yomikata/yomikata/pkg/source"
)

// IndexPath is the well-known path of the repository index document.
const IndexPath = "/index.json"

// IndexClient retrieves extension repository indexes. Every call is a single
// fresh GET: no retry and no caching, so callers always see the repository's
// current state and decide their own retry policy.
type IndexClient struct {
	client  *http.Client
	observe func(error)
}

// NewIndexClient creates an index client. A nil http.Client falls back to
// http.DefaultClient.
func NewIndexClient(client *http.Client) *IndexClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &IndexClient{client: client}
}

// WithObserver registers a callback invoked with the outcome of every fetch,
// used to feed the index metrics. Returns the client for chaining.
func (c *IndexClient) WithObserver(fn func(error)) *IndexClient {
	c.observe = fn
	return c
}

// FetchIndex downloads and decodes the index document under repoURL. The
// returned descriptors are untrusted input; nothing is loaded from them until
// the compatibility gate has passed.
func (c *IndexClient) FetchIndex(ctx context.Context, repoURL string) (index []source.Descriptor, err error) {
	if c.observe != nil {
		defer func() { c.observe(err) }()
	}
	url := strings.TrimSuffix(repoURL, "/") + IndexPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepoUnreachable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepoUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrRepoUnreachable, url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}

	return index, nil
}

// FindDescriptor returns the first index entry with the given id.
func FindDescriptor(index []source.Descriptor, id int64) (source.Descriptor, error) {
	for _, d := range index {
		if d.ID == id {
			return d, nil
		}
	}
	return source.Descriptor{}, fmt.Errorf("%w: id %d", ErrNotFoundInIndex, id)
}
