package catalog

import (
	"context"

	"github.com/yomikata/yomikata/pkg/extension"
	"github.com/yomikata/yomikata/pkg/source"
)

// Service exposes installed/available sources, their lifecycle and the
// catalog reads.
type Service struct {
	manager  *extension.Manager
	registry *extension.Registry
}

// NewService creates the catalog service over an extension manager and its
// registry.
func NewService(manager *extension.Manager, registry *extension.Registry) *Service {
	return &Service{
		manager:  manager,
		registry: registry,
	}
}

// InstalledSources lists the installed sources in ascending id order.
func (s *Service) InstalledSources() []source.Source {
	return s.registry.List()
}

// AvailableSources lists repository entries that are not installed.
func (s *Service) AvailableSources(ctx context.Context, repoURL string) ([]source.Source, error) {
	return s.manager.Available(ctx, repoURL)
}

// CheckUpdates lists installed sources with HasUpdate computed against the
// repository index.
func (s *Service) CheckUpdates(ctx context.Context, repoURL string) ([]source.Source, error) {
	return s.manager.CheckUpdates(ctx, repoURL)
}

// GetSourceByID returns the installed source with the id.
func (s *Service) GetSourceByID(id int64) (source.Source, error) {
	return s.registry.GetSourceInfo(id)
}

// InstallSource installs the source with the id from the repository.
func (s *Service) InstallSource(ctx context.Context, repoURL string, id int64) error {
	return s.manager.Install(ctx, repoURL, id)
}

// UpdateSource updates the installed source to a newer repository version.
func (s *Service) UpdateSource(ctx context.Context, repoURL string, id int64) error {
	return s.manager.Update(ctx, repoURL, id)
}

// UninstallSource removes the installed source.
func (s *Service) UninstallSource(id int64) error {
	return s.manager.Uninstall(id)
}

// GetPopularManga returns one page of the source's popular catalog.
func (s *Service) GetPopularManga(ctx context.Context, sourceID, page int64) ([]source.Manga, error) {
	return s.registry.GetPopularManga(ctx, sourceID, page)
}

// GetLatestManga returns one page of the source's latest-updates catalog.
func (s *Service) GetLatestManga(ctx context.Context, sourceID, page int64) ([]source.Manga, error) {
	return s.registry.GetLatestManga(ctx, sourceID, page)
}

// SearchManga searches the source's catalog.
func (s *Service) SearchManga(ctx context.Context, sourceID, page int64, query string, filters source.Filters) ([]source.Manga, error) {
	return s.registry.SearchManga(ctx, sourceID, page, query, filters)
}

// GetMangaBySourcePath returns the detail record for one manga path.
func (s *Service) GetMangaBySourcePath(ctx context.Context, sourceID int64, path string) (source.Manga, error) {
	return s.registry.GetMangaDetail(ctx, sourceID, path)
}

// GetChaptersBySourcePath returns the chapter list for one manga path.
func (s *Service) GetChaptersBySourcePath(ctx context.Context, sourceID int64, path string) ([]source.Chapter, error) {
	return s.registry.GetChapters(ctx, sourceID, path)
}

// GetPagesBySourcePath returns the page image URLs for one chapter path.
func (s *Service) GetPagesBySourcePath(ctx context.Context, sourceID int64, path string) ([]string, error) {
	return s.registry.GetPages(ctx, sourceID, path)
}
