package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/yomikata/yomikata/pkg/source"
)

// entry pairs the metadata of an installed extension with its live handle.
// Entries are immutable after insertion; a lifecycle transition replaces the
// whole entry.
type entry struct {
	info   source.Source
	handle Handle
}

// Registry is the dispatch bus: the set of currently loaded extensions keyed
// by source id. It is shared mutable state, read by many concurrent catalog
// calls and mutated by occasional lifecycle transitions, so all map access
// goes through a RWMutex.
// Construct one at process start and pass it by reference; there is no
// package-level instance.
type Registry struct {
	mu      sync.RWMutex
	sources map[int64]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[int64]*entry),
	}
}

// List returns the installed sources in ascending id order regardless of
// registration order. HasUpdate is always false here; computing it requires a
// repository index (Manager.CheckUpdates).
func (r *Registry) List() []source.Source {
	r.mu.RLock()
	result := make([]source.Source, 0, len(r.sources))
	for _, e := range r.sources {
		result = append(result, e.info)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Exists reports whether an extension with the id is installed.
func (r *Registry) Exists(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sources[id]
	return ok
}

// GetSourceInfo returns the metadata of the installed extension. The returned
// record always describes the currently loaded package.
func (r *Registry) GetSourceInfo(id int64) (source.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sources[id]
	if !ok {
		return source.Source{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return e.info, nil
}

// Register inserts a fully constructed entry. A duplicate id is rejected with
// ErrAlreadyInstalled, never silently replaced; under two racing installs for
// the same id exactly one caller succeeds here. The caller owns the handle
// until Register returns nil.
func (r *Registry) Register(info source.Source, handle Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[info.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrAlreadyInstalled, info.ID)
	}

	info.HasUpdate = false
	r.sources[info.ID] = &entry{info: info, handle: handle}
	return nil
}

// Unregister removes the entry and closes its handle.
func (r *Registry) Unregister(id int64) error {
	r.mu.Lock()
	e, ok := r.sources[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(r.sources, id)
	r.mu.Unlock()

	// Closing happens outside the lock; a slow teardown must not block
	// readers of unrelated sources.
	if err := e.handle.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrExecution, err)
	}
	return nil
}

// handleFor resolves the live handle for a dispatch call. The handle is used
// outside the lock: the entry it belongs to may be unregistered mid-call, in
// which case the call runs against the retired instance. The registry only
// guarantees its own map stays consistent.
func (r *Registry) handleFor(id int64) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return e.handle, nil
}

// GetPopularManga dispatches the popular-manga read to the extension.
func (r *Registry) GetPopularManga(ctx context.Context, id, page int64) ([]source.Manga, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := h.GetPopularManga(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return decodeMangaList(raw, id)
}

// GetLatestManga dispatches the latest-manga read to the extension.
func (r *Registry) GetLatestManga(ctx context.Context, id, page int64) ([]source.Manga, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := h.GetLatestManga(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return decodeMangaList(raw, id)
}

// SearchManga dispatches a catalog search to the extension.
func (r *Registry) SearchManga(ctx context.Context, id, page int64, query string, filters source.Filters) ([]source.Manga, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := h.SearchManga(ctx, page, query, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return decodeMangaList(raw, id)
}

// GetMangaDetail dispatches a detail read for one manga path.
func (r *Registry) GetMangaDetail(ctx context.Context, id int64, path string) (source.Manga, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return source.Manga{}, err
	}
	raw, err := h.GetMangaDetail(ctx, path)
	if err != nil {
		return source.Manga{}, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	m, err := source.DecodeManga(raw, id)
	if err != nil {
		return source.Manga{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return m, nil
}

// GetChapters dispatches the chapter-list read for one manga path.
func (r *Registry) GetChapters(ctx context.Context, id int64, path string) ([]source.Chapter, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := h.GetChapters(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	chapters, err := source.DecodeChapterList(raw, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return chapters, nil
}

// GetPages dispatches the page-list read for one chapter path.
func (r *Registry) GetPages(ctx context.Context, id int64, path string) ([]string, error) {
	h, err := r.handleFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := h.GetPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	pages, err := source.DecodePages(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return pages, nil
}

func decodeMangaList(raw json.RawMessage, id int64) ([]source.Manga, error) {
	mangas, err := source.DecodeMangaList(raw, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return mangas, nil
}
