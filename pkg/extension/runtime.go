package extension

import (
	"context"
	"encoding/json"

	"github.com/yomikata/yomikata/pkg/source"
)

// Runtime is the execution engine the lifecycle manager delegates to. It
// materializes a live Handle from a package published under a repository URL.
// Bounding the runtime of extension code (timeouts, resource ceilings) is the
// engine's responsibility, not the bus's.
type Runtime interface {
	Load(ctx context.Context, repoURL, name string) (Handle, error)
}

// Handle is one loaded extension instance. At most one live handle exists per
// source id, owned by the registry entry for that id.
//
// Each catalog call returns the extension-native JSON payload; decoding into
// normalized records happens at the bus so a misbehaving extension surfaces as
// ErrProtocol rather than crashing a caller.
type Handle interface {
	GetPopularManga(ctx context.Context, page int64) (json.RawMessage, error)
	GetLatestManga(ctx context.Context, page int64) (json.RawMessage, error)
	SearchManga(ctx context.Context, page int64, query string, filters source.Filters) (json.RawMessage, error)
	GetMangaDetail(ctx context.Context, path string) (json.RawMessage, error)
	GetChapters(ctx context.Context, path string) (json.RawMessage, error)
	GetPages(ctx context.Context, path string) (json.RawMessage, error)

	// Close releases the instance. The registry calls it when the entry is
	// unregistered or when a freshly loaded handle loses an install race.
	Close() error
}
