package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/yomikata/yomikata/pkg/httputil"
	"github.com/yomikata/yomikata/pkg/source"
)

// pageParam parses ?page=, defaulting to the first page.
func pageParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive integer")
	}
	return page, nil
}

func (s *Server) recordDispatch(operation string, err error, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordDispatch(operation, err, duration)
	}
}

// dispatchCtx derives the context for one extension call, applying the
// configured timeout when set.
func (s *Server) dispatchCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if s.dispatchTimeout > 0 {
		return context.WithTimeout(r.Context(), s.dispatchTimeout)
	}
	return r.Context(), func() {}
}

// getPopularManga handles GET /api/sources/{id}/popular
func (s *Server) getPopularManga(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}
	page, err := pageParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	manga, err := s.catalog.GetPopularManga(ctx, id, page)
	s.recordDispatch("get_popular_manga", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, manga)
}

// getLatestManga handles GET /api/sources/{id}/latest
func (s *Server) getLatestManga(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}
	page, err := pageParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	manga, err := s.catalog.GetLatestManga(ctx, id, page)
	s.recordDispatch("get_latest_manga", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, manga)
}

// searchManga handles GET /api/sources/{id}/search
//
// The optional ?filters= parameter carries a JSON object of source-specific
// filter values, passed through to the extension untouched.
func (s *Server) searchManga(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}
	page, err := pageParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	query := r.URL.Query().Get("q")

	var filters source.Filters
	if raw := r.URL.Query().Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			httputil.WriteBadRequest(w, "filters must be a JSON object")
			return
		}
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	manga, err := s.catalog.SearchManga(ctx, id, page, query, filters)
	s.recordDispatch("search_manga", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, manga)
}

// getMangaDetail handles GET /api/sources/{id}/manga
func (s *Server) getMangaDetail(w http.ResponseWriter, r *http.Request) {
	id, path, ok := s.sourceAndPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	manga, err := s.catalog.GetMangaBySourcePath(ctx, id, path)
	s.recordDispatch("get_manga_detail", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, manga)
}

// getChapters handles GET /api/sources/{id}/chapters
func (s *Server) getChapters(w http.ResponseWriter, r *http.Request) {
	id, path, ok := s.sourceAndPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	chapters, err := s.catalog.GetChaptersBySourcePath(ctx, id, path)
	s.recordDispatch("get_chapters", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, chapters)
}

// getPages handles GET /api/sources/{id}/pages
func (s *Server) getPages(w http.ResponseWriter, r *http.Request) {
	id, path, ok := s.sourceAndPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.dispatchCtx(r)
	defer cancel()

	start := time.Now()
	pages, err := s.catalog.GetPagesBySourcePath(ctx, id, path)
	s.recordDispatch("get_pages", err, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, pages)
}

// sourceAndPath validates the {id} variable and required ?path= parameter,
// writing the error response itself on failure.
func (s *Server) sourceAndPath(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return 0, "", false
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.WriteBadRequest(w, "path parameter is required")
		return 0, "", false
	}
	return id, path, true
}
