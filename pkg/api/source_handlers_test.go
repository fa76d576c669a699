package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomikata/yomikata/pkg/source"
)

func TestListInstalledSourcesEmpty(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []source.Source
	decodeBody(t, rec, &sources)
	assert.Empty(t, sources)
}

func TestInstallThenList(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	f.install(t, "1")

	rec := f.do(t, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []source.Source
	decodeBody(t, rec, &sources)
	require.Len(t, sources, 1)
	assert.Equal(t, int64(1), sources[0].ID)
	assert.Equal(t, "foo", sources[0].Name)
	assert.Equal(t, "1.0.0", sources[0].Version)
}

func TestInstallTwiceConflicts(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	f.install(t, "1")

	rec := f.do(t, http.MethodPost, "/api/sources/1/install")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "source installed, use updateSource to update")
}

func TestInstallUnknownID(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	rec := f.do(t, http.MethodPost, "/api/sources/99/install")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInstallIncompatible(t *testing.T) {
	d := descriptorFor(1, "foo", "1.0.0")
	d.ABITag = "other-abi"
	f := newFixture(t, []source.Descriptor{d})

	rec := f.do(t, http.MethodPost, "/api/sources/1/install")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incompatible version, update yomikata server")
}

func TestUpdateNoNewVersion(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	f.install(t, "1")

	rec := f.do(t, http.MethodPost, "/api/sources/1/update")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No new version")
}

func TestUninstall(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	f.install(t, "1")

	rec := f.do(t, http.MethodDelete, "/api/sources/1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/sources/1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUninstallNotInstalled(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodDelete, "/api/sources/1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "source not found")
}

func TestAvailableExcludesInstalled(t *testing.T) {
	f := newFixture(t, []source.Descriptor{
		descriptorFor(1, "foo", "1.0.0"),
		descriptorFor(2, "bar", "2.0.0"),
	})

	f.install(t, "1")

	rec := f.do(t, http.MethodGet, "/api/sources/available")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []source.Source
	decodeBody(t, rec, &sources)
	require.Len(t, sources, 1)
	assert.Equal(t, int64(2), sources[0].ID)
}

func TestCheckUpdatesFlagsNewerVersion(t *testing.T) {
	f := newFixture(t, []source.Descriptor{descriptorFor(1, "foo", "1.0.0")})

	f.install(t, "1")

	// The repository now offers a newer build.
	f.repo.Config.Handler = repoHandler([]source.Descriptor{descriptorFor(1, "foo", "1.1.0")})

	rec := f.do(t, http.MethodGet, "/api/sources/updates")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []source.Source
	decodeBody(t, rec, &sources)
	require.Len(t, sources, 1)
	assert.True(t, sources[0].HasUpdate)
}

func TestRepoUnreachableIsBadGateway(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.Close()

	rec := f.do(t, http.MethodGet, "/api/sources/available")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRepoURLOverride(t *testing.T) {
	f := newFixture(t, nil)

	other := newRepoServer(t, []source.Descriptor{descriptorFor(7, "alt", "1.0.0")})

	rec := f.do(t, http.MethodGet, "/api/sources/available?repo_url="+other.URL)
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []source.Source
	decodeBody(t, rec, &sources)
	require.Len(t, sources, 1)
	assert.Equal(t, int64(7), sources[0].ID)
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/sources")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
