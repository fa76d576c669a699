package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yomikata/yomikata/pkg/source"
)

// request is the single message an extension subprocess reads from stdin.
type request struct {
	Method  string         `json:"method"`
	Page    int64          `json:"page,omitempty"`
	Query   string         `json:"query,omitempty"`
	Filters source.Filters `json:"filters,omitempty"`
	Path    string         `json:"path,omitempty"`
}

// response is the single message an extension subprocess writes to stdout.
// Exactly one of Data and Error is set.
type response struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

type execFunc func(ctx context.Context, bin string, stdin []byte) ([]byte, error)

// procHandle is one loaded extension instance. The subprocess is spawned per
// call; the handle owns only the unpacked package directory.
type procHandle struct {
	dir   string
	bin   string
	cache *lru.Cache[string, []byte]
	exec  execFunc
}

func (h *procHandle) invoke(ctx context.Context, req request) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	key := h.bin + "\x00" + string(payload)
	if data, ok := h.cache.Get(key); ok {
		return json.RawMessage(data), nil
	}

	out, err := h.exec(ctx, h.bin, payload)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("bad response envelope: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("extension: %s", resp.Error)
	}

	h.cache.Add(key, []byte(resp.Data))
	return resp.Data, nil
}

func (h *procHandle) GetPopularManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "getPopularManga", Page: page})
}

func (h *procHandle) GetLatestManga(ctx context.Context, page int64) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "getLatestManga", Page: page})
}

func (h *procHandle) SearchManga(ctx context.Context, page int64, query string, filters source.Filters) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "searchManga", Page: page, Query: query, Filters: filters})
}

func (h *procHandle) GetMangaDetail(ctx context.Context, path string) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "getMangaDetail", Path: path})
}

func (h *procHandle) GetChapters(ctx context.Context, path string) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "getChapters", Path: path})
}

func (h *procHandle) GetPages(ctx context.Context, path string) (json.RawMessage, error) {
	return h.invoke(ctx, request{Method: "getPages", Path: path})
}

// Close removes the unpacked package. In-flight calls against the retired
// instance keep their already-spawned subprocesses; new calls will fail once
// the binary is gone, and by then the registry has already dropped the handle.
func (h *procHandle) Close() error {
	return os.RemoveAll(h.dir)
}

// runProcess executes one extension call. Cancellation of ctx kills the
// subprocess; per-call timeouts are the caller's choice of ctx.
func runProcess(ctx context.Context, bin string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, stderr.String())
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
