package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/fluxlang/fluxc/internal/types"
	"github.com/fluxlang/fluxc/internal/wire"
)

// cacheKey hashes a package's import path together with its source files,
// in the sorted order resolveUncached already computed, so an edit to any
// one file invalidates exactly that package's cache entry.
func cacheKey(path string, names []string, files map[string]string) string {
	h := sha256.New()
	io.WriteString(h, path)
	for _, n := range names {
		io.WriteString(h, n)
		io.WriteString(h, files[n])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Resolver) cachePath(key string) string {
	if r.cfg == nil || r.cfg.ResolverCacheDir == "" {
		return ""
	}
	return filepath.Join(r.cfg.ResolverCacheDir, key+".flcache")
}

// loadCache returns the cached export set for key, if a readable,
// decodable cache file exists for it. Any read or decode failure is
// treated as a cache miss, never an error: a stale or corrupt cache
// entry should just be recomputed, not fail the build.
func (r *Resolver) loadCache(key string) (map[string]*types.PolyType, bool) {
	p := r.cachePath(key)
	if p == "" {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	exports, err := wire.DecodeExports(data)
	if err != nil {
		return nil, false
	}
	return exports, true
}

// storeCache writes exports under key, creating the cache directory if
// needed. Write failures are ignored: the cache is an optimization, not
// a correctness requirement, so a read-only filesystem just means every
// run recomputes.
func (r *Resolver) storeCache(key string, exports map[string]*types.PolyType) {
	p := r.cachePath(key)
	if p == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(p, wire.EncodeExports(exports), 0o644)
}
