// Package local is the execution engine behind the extension bus: it
// materializes extension packages from a repository and runs them as local
// subprocesses.
//
// A package is a tar.gz under {repo_url}/library/{name}.tar.gz containing a
// plugin.yaml manifest and an executable of the same name. Each catalog call
// is one subprocess invocation with a JSON request on stdin and a JSON
// response on stdout. Results of read calls are cached in a small LRU so
// paging back and forth does not hammer the upstream site; that policy is
// internal to the engine and invisible to the bus.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-getter"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yomikata/yomikata/pkg/extension"
)

const defaultCacheSize = 256

// Manifest is the plugin.yaml every extension package ships.
type Manifest struct {
	ID              int64  `yaml:"id"`
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	ABITag          string `yaml:"abi_tag"`
	ContractVersion string `yaml:"contract_version"`
	Icon            string `yaml:"icon"`
}

type fetchFunc func(ctx context.Context, src, dst string) error

// Engine implements extension.Runtime with subprocess extensions stored under
// a local directory.
type Engine struct {
	dir   string
	cache *lru.Cache[string, []byte]
	log   *logrus.Logger

	fetch fetchFunc
	exec  execFunc
}

// New creates an engine rooted at dir, creating it if needed. A cacheSize
// of zero or less selects the default.
func New(dir string, cacheSize int, log *logrus.Logger) (*Engine, error) {
	if log == nil {
		log = logrus.New()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create extension directory: %w", err)
	}

	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		dir:   dir,
		cache: cache,
		log:   log,
		fetch: fetchPackage,
		exec:  runProcess,
	}, nil
}

// Load downloads and unpacks the named package and returns a live handle.
// Every load gets its own directory; concurrent loads of the same name never
// share files, and Close removes only the directory it owns.
func (e *Engine) Load(ctx context.Context, repoURL, name string) (extension.Handle, error) {
	src := fmt.Sprintf("%s/library/%s.tar.gz", strings.TrimSuffix(repoURL, "/"), name)
	dst := filepath.Join(e.dir, fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))

	if err := e.fetch(ctx, src, dst); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}

	manifest, err := loadManifest(filepath.Join(dst, "plugin.yaml"))
	if err != nil {
		os.RemoveAll(dst)
		return nil, err
	}

	bin := filepath.Join(dst, manifest.Name)
	if fi, err := os.Stat(bin); err != nil || fi.IsDir() {
		os.RemoveAll(dst)
		return nil, fmt.Errorf("package %s has no executable %s", name, manifest.Name)
	}

	e.log.Infof("Loaded extension %s v%s from %s", manifest.Name, manifest.Version, repoURL)

	return &procHandle{
		dir:   dst,
		bin:   bin,
		cache: e.cache,
		exec:  e.exec,
	}, nil
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest missing name")
	}

	return &manifest, nil
}

// fetchPackage downloads and unpacks an archive with go-getter.
func fetchPackage(ctx context.Context, src, dst string) error {
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeDir,
	}
	return client.Get()
}
