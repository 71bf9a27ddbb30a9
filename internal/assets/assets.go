// Package assets loads OBJ meshes and keeps one shared copy per file.
package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/mithril/internal/engine/model"
	"github.com/Faultbox/mithril/internal/logger"
	"github.com/Faultbox/mithril/pkg/formats"
)

// Manager is the asset table. Meshes are built once per path and handed out
// read-only to every object that references them.
type Manager struct {
	baseDir string
	cache   *Cache
	mu      sync.Mutex // serializes loads so a path is parsed only once
}

// NewManager creates an asset manager resolving relative paths against baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir: baseDir,
		cache:   NewCache(),
	}
}

// Resolve returns the cache key for path.
func (m *Manager) Resolve(path string) string {
	if !filepath.IsAbs(path) && m.baseDir != "" {
		path = filepath.Join(m.baseDir, path)
	}
	return filepath.Clean(path)
}

// Load returns the mesh for an OBJ file, parsing and unifying it on first use.
// Ignored lines are logged as warnings; any other problem fails the load.
func (m *Manager) Load(path string) (*model.Mesh, error) {
	key := m.Resolve(path)

	// Check cache first
	if mesh, ok := m.cache.Get(key); ok {
		return mesh, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have finished loading while we waited
	if mesh, ok := m.cache.Peek(key); ok {
		return mesh, nil
	}

	obj, err := formats.LoadOBJ(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}

	log := logger.Named("assets")
	for _, ignored := range obj.Ignored {
		log.Warn("ignored OBJ line",
			zap.String("file", key),
			zap.Int("line", ignored.Line),
			zap.String("text", ignored.Text),
		)
	}

	mesh, err := model.BuildMesh(obj)
	if err != nil {
		return nil, fmt.Errorf("building mesh for %s: %w", key, err)
	}

	log.Info("mesh loaded",
		zap.String("file", key),
		zap.Int("positions", len(obj.Positions)),
		zap.Int("normals", len(obj.Normals)),
		zap.Int("triangles", obj.TriangleCount()),
		zap.Int("vertices", mesh.VertexCount()),
	)

	m.cache.Set(key, mesh)
	return mesh, nil
}

// Release drops the table entry for path. Objects already holding the mesh
// keep it alive.
func (m *Manager) Release(path string) {
	m.cache.Delete(m.Resolve(path))
}

// Len returns the number of loaded meshes.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Stats returns cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close empties the asset table.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache maps resolved paths to built meshes.
type Cache struct {
	data map[string]*model.Mesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*model.Mesh),
	}
}

// Get retrieves an item from cache and records a hit or miss.
func (c *Cache) Get(key string) (*model.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mesh, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mesh, ok
}

// Peek retrieves an item without touching the statistics.
func (c *Cache) Peek(key string) (*model.Mesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mesh, ok := c.data[key]
	return mesh, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, mesh *model.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = mesh
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*model.Mesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
