package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/yomikata/yomikata/pkg/source"
)

// fakeHandle serves canned payloads for every catalog call.
type fakeHandle struct {
	payload json.RawMessage
	err     error
	closed  atomic.Bool
	calls   atomic.Int64
}

func (h *fakeHandle) call() (json.RawMessage, error) {
	h.calls.Add(1)
	if h.err != nil {
		return nil, h.err
	}
	return h.payload, nil
}

func (h *fakeHandle) GetPopularManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) GetLatestManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) SearchManga(ctx context.Context, page int64, query string, filters source.Filters) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) GetMangaDetail(ctx context.Context, path string) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) GetChapters(ctx context.Context, path string) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) GetPages(ctx context.Context, path string) (json.RawMessage, error) {
	return h.call()
}

func (h *fakeHandle) Close() error {
	h.closed.Store(true)
	return nil
}

// fakeRuntime materializes fakeHandles and can be told to fail.
type fakeRuntime struct {
	payload json.RawMessage
	loadErr error
	loads   atomic.Int64
	last    atomic.Pointer[fakeHandle]
}

func (r *fakeRuntime) Load(ctx context.Context, repoURL, name string) (Handle, error) {
	r.loads.Add(1)
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	h := &fakeHandle{payload: r.payload}
	r.last.Store(h)
	return h, nil
}

// indexServer serves a fixed descriptor list as index.json.
func indexServer(descriptors []source.Descriptor) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != IndexPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(descriptors)
	}))
}

func descriptorFor(id int64, name, version, abiTag, contractVersion string) source.Descriptor {
	return source.Descriptor{
		ID:              id,
		Name:            name,
		URL:             fmt.Sprintf("https://%s.example.com", name),
		Version:         version,
		ABITag:          abiTag,
		ContractVersion: contractVersion,
		Icon:            fmt.Sprintf("https://%s.example.com/icon.png", name),
	}
}
