// Package worker runs the background jobs of the server, currently the
// periodic update check against the extension repository.
package worker
