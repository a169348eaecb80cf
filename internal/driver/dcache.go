package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/diag"
)

// cacheSchema invalidates on-disk entries whenever the cached shape
// changes. Bump it when CacheEntry or diag.Diagnostic changes.
const cacheSchema = 2

// DiskCache persists check results keyed by a digest of all inputs, so an
// unchanged project re-checks for free (watch mode hits this constantly).
type DiskCache struct {
	dir string
}

// CacheEntry is one stored check outcome.
type CacheEntry struct {
	Schema    int               `msgpack:"schema"`
	Key       string            `msgpack:"key"`
	Diags     []diag.Diagnostic `msgpack:"diags"`
	HasErrors bool              `msgpack:"has_errors"`
	CreatedAt time.Time         `msgpack:"created_at"`
}

// OpenDiskCache creates the cache directory if needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Load fetches an entry; schema or key mismatches count as misses.
func (c *DiskCache) Load(key string) (*CacheEntry, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Schema != cacheSchema || entry.Key != key {
		return nil, false
	}
	return &entry, true
}

// Store writes an entry atomically: temp file in the same directory, then
// rename, so a concurrent reader never sees a torn write.
func (c *DiskCache) Store(key string, entry *CacheEntry) error {
	entry.Schema = cacheSchema
	entry.Key = key
	raw, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, c.path(key))
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".qcache")
}

// InputsKey digests every loaded module's path and payload hash into one
// cache key.
func InputsKey(modules []*LoadedModule) string {
	h := sha256.New()
	for _, lm := range modules {
		h.Write([]byte(lm.Path))
		h.Write([]byte{0})
		h.Write(lm.Hash[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
