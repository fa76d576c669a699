package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomikata/yomikata/pkg/catalog"
	"github.com/yomikata/yomikata/pkg/compatibility"
	"github.com/yomikata/yomikata/pkg/extension"
	"github.com/yomikata/yomikata/pkg/observability"
	"github.com/yomikata/yomikata/pkg/source"
)

const (
	testABITag   = "go-test"
	testContract = "1.0.0"
)

type noopHandle struct{}

func (noopHandle) GetPopularManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (noopHandle) GetLatestManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (noopHandle) SearchManga(ctx context.Context, page int64, query string, filters source.Filters) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (noopHandle) GetMangaDetail(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (noopHandle) GetChapters(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (noopHandle) GetPages(ctx context.Context, path string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (noopHandle) Close() error { return nil }

type noopRuntime struct{}

func (noopRuntime) Load(ctx context.Context, repoURL, name string) (extension.Handle, error) {
	return noopHandle{}, nil
}

type repoState struct {
	descriptors []source.Descriptor
}

func (s *repoState) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.descriptors)
}

func newChecker(t *testing.T) (*UpdateChecker, *catalog.Service, *repoState, *observability.Metrics, string) {
	t.Helper()

	repo := &repoState{}
	srv := httptest.NewServer(repo)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry := extension.NewRegistry()
	gate := compatibility.Gate{ABITag: testABITag, ContractVersion: testContract}
	manager := extension.NewManager(registry, extension.NewIndexClient(nil), gate, noopRuntime{}, log)
	svc := catalog.NewService(manager, registry)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	checker := NewUpdateChecker(svc, srv.URL, log, metrics)
	return checker, svc, repo, metrics, srv.URL
}

func TestRunNowCountsUpdates(t *testing.T) {
	checker, svc, repo, metrics, repoURL := newChecker(t)

	repo.descriptors = []source.Descriptor{
		{ID: 1, Name: "foo", Version: "1.0.0", ABITag: testABITag, ContractVersion: testContract},
		{ID: 2, Name: "bar", Version: "1.0.0", ABITag: testABITag, ContractVersion: testContract},
	}

	ctx := context.Background()
	require.NoError(t, svc.InstallSource(ctx, repoURL, 1))
	require.NoError(t, svc.InstallSource(ctx, repoURL, 2))

	// Only foo gets a newer build.
	repo.descriptors[0].Version = "1.1.0"

	updates, err := checker.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updates)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourcesWithUpdate))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.InstalledSources))
}

func TestRunNowNoSources(t *testing.T) {
	checker, _, _, metrics, _ := newChecker(t)

	updates, err := checker.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updates)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SourcesWithUpdate))
}

func TestRunNowRepoDown(t *testing.T) {
	checker, svc, repo, _, repoURL := newChecker(t)

	repo.descriptors = []source.Descriptor{
		{ID: 1, Name: "foo", Version: "1.0.0", ABITag: testABITag, ContractVersion: testContract},
	}
	require.NoError(t, svc.InstallSource(context.Background(), repoURL, 1))

	checker.repoURL = "http://127.0.0.1:1"

	_, err := checker.RunNow(context.Background())
	assert.ErrorIs(t, err, extension.ErrRepoUnreachable)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	checker, _, _, _, _ := newChecker(t)

	assert.Error(t, checker.Start("not a schedule"))
}

func TestStartAndStop(t *testing.T) {
	checker, _, _, _, _ := newChecker(t)

	require.NoError(t, checker.Start("@hourly"))
	checker.Stop()
}
