package compiler

import (
	"context"
	"sync"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
)

// A Cache keeps compiled scenes keyed by scene ID so switching back to a
// previously compiled scene does not trigger a rebuild. Cached scenes must be
// treated as read-only. It is safe to use a Cache from multiple goroutines.
type Cache struct {
	sync.Mutex

	logger log.Logger
	opts   Options
	scenes map[string]*scene.Scene
}

// Create a new scene cache that compiles scenes using opts.
func NewCache(opts Options) *Cache {
	return &Cache{
		logger: log.New("scene cache"),
		opts:   opts,
		scenes: make(map[string]*scene.Scene),
	}
}

// Get the compiled version of inScene, compiling it if it is not cached.
func (c *Cache) Get(ctx context.Context, inScene *input.Scene) (*scene.Scene, error) {
	c.Lock()
	cached, exists := c.scenes[inScene.ID]
	c.Unlock()

	if exists {
		c.logger.Infof("cache hit for scene %s", inScene.ID)
		return cached, nil
	}

	compiled, err := Compile(ctx, inScene, c.opts)
	if err != nil {
		return nil, err
	}

	c.Lock()
	c.scenes[inScene.ID] = compiled
	c.Unlock()
	return compiled, nil
}

// Drop the cached entry for a scene ID.
func (c *Cache) Invalidate(id string) {
	c.Lock()
	delete(c.scenes, id)
	c.Unlock()
}

// Get the number of cached scenes.
func (c *Cache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.scenes)
}
