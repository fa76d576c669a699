package api

import (
	"errors"
	"net/http"

	"github.com/yomikata/yomikata/pkg/compatibility"
	"github.com/yomikata/yomikata/pkg/extension"
	"github.com/yomikata/yomikata/pkg/httputil"
)

// writeServiceError maps extension errors onto HTTP statuses. Messages for
// client-facing conditions are fixed strings the frontend matches on.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extension.ErrAlreadyInstalled):
		httputil.WriteErrorMessage(w, http.StatusConflict, "source installed, use updateSource to update")
	case errors.Is(err, extension.ErrIncompatibleVersion):
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Incompatible version, update yomikata server")
	case errors.Is(err, extension.ErrNoNewVersion):
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "No new version")
	case errors.Is(err, extension.ErrNotFound):
		httputil.WriteNotFoundError(w, "source not found")
	case errors.Is(err, extension.ErrNotFoundInIndex):
		httputil.WriteNotFoundError(w, "source not found in index")
	case errors.Is(err, compatibility.ErrInvalidVersion):
		httputil.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, extension.ErrRepoUnreachable),
		errors.Is(err, extension.ErrMalformedIndex),
		errors.Is(err, extension.ErrProtocol):
		httputil.WriteError(w, http.StatusBadGateway, err)
	default:
		httputil.WriteInternalError(w, err)
	}
}
