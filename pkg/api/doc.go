// Package api provides the HTTP REST API server for the yomikata source
// extension manager.
//
// # Endpoints
//
// Source lifecycle and listing:
//
//	GET    /api/sources                 - List installed sources
//	GET    /api/sources/available       - List repository sources not yet installed
//	GET    /api/sources/updates         - List installed sources with update status
//	GET    /api/sources/{id}            - Get one installed source
//	POST   /api/sources/{id}/install    - Install a source from the repository
//	POST   /api/sources/{id}/update     - Update an installed source
//	DELETE /api/sources/{id}            - Uninstall a source
//
// Catalog reads dispatched to the installed source:
//
//	GET /api/sources/{id}/popular?page=N          - Popular catalog page
//	GET /api/sources/{id}/latest?page=N           - Latest-updates catalog page
//	GET /api/sources/{id}/search?page=N&q=...     - Search the catalog
//	GET /api/sources/{id}/manga?path=...          - Manga detail by source path
//	GET /api/sources/{id}/chapters?path=...       - Chapter list by manga path
//	GET /api/sources/{id}/pages?path=...          - Page image URLs by chapter path
//
// The repository can be overridden per request with ?repo_url= on the
// lifecycle endpoints; otherwise the configured repository is used.
//
// All responses are JSON. Errors use the shared httputil.ErrorResponse body,
// with the status derived from the extension error taxonomy.
package api
