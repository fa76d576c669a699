// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding and common middleware.
package httputil
