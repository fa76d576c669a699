package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yomikata/yomikata/pkg/catalog"
	"github.com/yomikata/yomikata/pkg/compatibility"
	"github.com/yomikata/yomikata/pkg/extension"
	"github.com/yomikata/yomikata/pkg/source"
)

const (
	testABITag   = "go-test"
	testContract = "1.0.0"
)

type stubHandle struct {
	list json.RawMessage
	fail error
}

func (h *stubHandle) call() (json.RawMessage, error) {
	if h.fail != nil {
		return nil, h.fail
	}
	return h.list, nil
}

func (h *stubHandle) GetPopularManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.call()
}

func (h *stubHandle) GetLatestManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.call()
}

func (h *stubHandle) SearchManga(ctx context.Context, page int64, query string, filters source.Filters) (json.RawMessage, error) {
	return h.call()
}

func (h *stubHandle) GetMangaDetail(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`{"title": "Detail", "path": "` + path + `"}`), nil
}

func (h *stubHandle) GetChapters(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`[{"title": "c1", "path": "/ch/1", "number": 1}]`), nil
}

func (h *stubHandle) GetPages(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`["https://x/1.png"]`), nil
}

func (h *stubHandle) Close() error { return nil }

type stubRuntime struct {
	handle *stubHandle
}

func (r stubRuntime) Load(ctx context.Context, repoURL, name string) (extension.Handle, error) {
	return r.handle, nil
}

type fixture struct {
	server  *Server
	repo    *httptest.Server
	handle  *stubHandle
	repoURL string
}

// newFixture wires a full server over an in-memory runtime and a fake
// repository serving the given descriptors.
func newFixture(t *testing.T, descriptors []source.Descriptor) *fixture {
	t.Helper()

	repo := newRepoServer(t, descriptors)

	log := logrus.New()
	log.SetOutput(io.Discard)

	handle := &stubHandle{list: json.RawMessage(`[{"title": "Foo", "path": "/foo"}]`)}

	registry := extension.NewRegistry()
	gate := compatibility.Gate{ABITag: testABITag, ContractVersion: testContract}
	manager := extension.NewManager(registry, extension.NewIndexClient(nil), gate, stubRuntime{handle: handle}, log)
	svc := catalog.NewService(manager, registry)

	return &fixture{
		server:  NewServer(svc, repo.URL, log, Options{}),
		repo:    repo,
		handle:  handle,
		repoURL: repo.URL,
	}
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (f *fixture) install(t *testing.T, id string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sources/"+id+"/install")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func repoHandler(descriptors []source.Descriptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(descriptors)
	})
}

func newRepoServer(t *testing.T, descriptors []source.Descriptor) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(repoHandler(descriptors))
	t.Cleanup(srv.Close)
	return srv
}

func descriptorFor(id int64, name, version string) source.Descriptor {
	return source.Descriptor{
		ID:              id,
		Name:            name,
		Version:         version,
		ABITag:          testABITag,
		ContractVersion: testContract,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
