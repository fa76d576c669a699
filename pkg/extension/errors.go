package extension

import "errors"

// Lifecycle and dispatch failures. Every operation in this package returns one
// of these (wrapped with context) or succeeds; nothing is swallowed or retried
// here. Retry policy belongs to the caller.
var (
	// ErrRepoUnreachable means the repository index could not be retrieved.
	ErrRepoUnreachable = errors.New("extension repository unreachable")

	// ErrMalformedIndex means the repository returned something that is not a
	// valid index document.
	ErrMalformedIndex = errors.New("malformed extension index")

	// ErrNotFoundInIndex means the repository index has no entry for the id.
	ErrNotFoundInIndex = errors.New("source not found in index")

	// ErrNotFound means no extension with the id is installed.
	ErrNotFound = errors.New("source not found")

	// ErrAlreadyInstalled means an extension with the id is already installed.
	ErrAlreadyInstalled = errors.New("source already installed")

	// ErrIncompatibleVersion means the package was built against a different
	// ABI tag or contract version than this server.
	ErrIncompatibleVersion = errors.New("incompatible version")

	// ErrNoNewVersion means the repository does not offer a version newer than
	// the installed one.
	ErrNoNewVersion = errors.New("no new version")

	// ErrExecution wraps a failure reported by the execution engine while
	// running an extension call.
	ErrExecution = errors.New("extension returned error")

	// ErrProtocol means an extension produced a result that does not decode
	// into the boundary schema.
	ErrProtocol = errors.New("extension returned malformed result")
)
