package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"itunes2storage/core/storage"

	"golang.org/x/sync/singleflight"
)

// Load reads and decodes the library file at path.
func Load(ctx context.Context, client storage.Client, path string) (*Document, error) {
	data, err := client.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnreadable, path, err)
	}
	return Decode(data)
}

// cachedDocument is a decoded library together with the file attributes it was decoded from.
type cachedDocument struct {
	doc     *Document
	modTime time.Time
	size    int64
}

// Loader decodes library files and keeps the last decoded document per path.
// A file whose modification time and size did not change is not decoded again, and
// concurrent loads of the same path share one decode.
type Loader struct {
	client storage.Client

	mu    sync.RWMutex
	cache map[string]*cachedDocument
	sf    singleflight.Group
}

// NewLoader creates a Loader reading through client.
func NewLoader(client storage.Client) *Loader {
	return &Loader{
		client: client,
		cache:  make(map[string]*cachedDocument),
	}
}

// Load returns the decoded document at path, reusing the cached one when the file is unchanged.
func (l *Loader) Load(ctx context.Context, path string) (*Document, error) {
	info, err := l.client.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnreadable, path, err)
	}

	// Fast path: cached and unchanged
	if doc := l.lookup(path, info.ModTime(), info.Size()); doc != nil {
		return doc, nil
	}

	// Slow path: decode using singleflight so overlapping triggers share the work
	result, err, _ := l.sf.Do(path, func() (interface{}, error) {
		if doc := l.lookup(path, info.ModTime(), info.Size()); doc != nil {
			return doc, nil
		}

		doc, err := Load(ctx, l.client, path)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[path] = &cachedDocument{doc: doc, modTime: info.ModTime(), size: info.Size()}
		l.mu.Unlock()

		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Document), nil
}

// Invalidate drops the cached document for path.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

func (l *Loader) lookup(path string, modTime time.Time, size int64) *Document {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cached, ok := l.cache[path]
	if !ok || !cached.modTime.Equal(modTime) || cached.size != size {
		return nil
	}
	return cached.doc
}
