package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yomikata/yomikata/pkg/httputil"
)

// sourceID extracts the {id} path variable. The route pattern already
// restricts it to digits.
func sourceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// requestRepoURL returns the per-request repository override or the
// configured default.
func (s *Server) requestRepoURL(r *http.Request) string {
	if repo := r.URL.Query().Get("repo_url"); repo != "" {
		return repo
	}
	return s.repoURL
}

func (s *Server) recordLifecycle(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordLifecycle(operation, err)
	if err == nil {
		s.metrics.InstalledSources.Set(float64(len(s.catalog.InstalledSources())))
	}
}

// listInstalledSources handles GET /api/sources
func (s *Server) listInstalledSources(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.catalog.InstalledSources())
}

// listAvailableSources handles GET /api/sources/available
func (s *Server) listAvailableSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.catalog.AvailableSources(r.Context(), s.requestRepoURL(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, sources)
}

// checkUpdates handles GET /api/sources/updates
func (s *Server) checkUpdates(w http.ResponseWriter, r *http.Request) {
	sources, err := s.catalog.CheckUpdates(r.Context(), s.requestRepoURL(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, sources)
}

// getSource handles GET /api/sources/{id}
func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}

	src, err := s.catalog.GetSourceByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, src)
}

// installSource handles POST /api/sources/{id}/install
func (s *Server) installSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}

	err = s.catalog.InstallSource(r.Context(), s.requestRepoURL(r), id)
	s.recordLifecycle("install", err)
	if err != nil {
		s.log.WithFields(logrus.Fields{"source_id": id}).WithError(err).Warn("install failed")
		writeServiceError(w, err)
		return
	}

	s.log.WithFields(logrus.Fields{"source_id": id}).Info("source installed")
	httputil.WriteJSON(w, http.StatusCreated, s.mustSource(id))
}

// updateSource handles POST /api/sources/{id}/update
func (s *Server) updateSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}

	err = s.catalog.UpdateSource(r.Context(), s.requestRepoURL(r), id)
	s.recordLifecycle("update", err)
	if err != nil {
		s.log.WithFields(logrus.Fields{"source_id": id}).WithError(err).Warn("update failed")
		writeServiceError(w, err)
		return
	}

	s.log.WithFields(logrus.Fields{"source_id": id}).Info("source updated")
	httputil.WriteSuccess(w, s.mustSource(id))
}

// uninstallSource handles DELETE /api/sources/{id}
func (s *Server) uninstallSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid source id")
		return
	}

	err = s.catalog.UninstallSource(id)
	s.recordLifecycle("uninstall", err)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.log.WithFields(logrus.Fields{"source_id": id}).Info("source uninstalled")
	httputil.WriteNoContent(w)
}

// mustSource fetches an installed source for a success body. The lifecycle
// call just succeeded, so a miss only happens on a concurrent uninstall; an
// empty record is fine then.
func (s *Server) mustSource(id int64) interface{} {
	src, err := s.catalog.GetSourceByID(id)
	if err != nil {
		return map[string]int64{"id": id}
	}
	return src
}
