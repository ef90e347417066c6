package sheetsync

import (
	"sync"
	"time"
)

// Cache lifetimes. Grid snapshots go stale quickly because nothing signals
// edits made outside this process; sheet ids are effectively immutable.
const (
	gridCacheTTL    = 5 * time.Minute
	sheetIDCacheTTL = time.Hour
)

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

// memoryGridCache is the default IGridCache: a process-local TTL map keyed
// by spreadsheet id + sheet title.
type memoryGridCache struct {
	mu    sync.Mutex
	grids map[string]cacheEntry[*SheetGrid]
	ids   map[string]cacheEntry[int64]
	now   func() time.Time
}

func NewMemoryGridCache() IGridCache {
	return &memoryGridCache{
		grids: make(map[string]cacheEntry[*SheetGrid]),
		ids:   make(map[string]cacheEntry[int64]),
		now:   time.Now,
	}
}

func cacheKey(spreadsheetID, sheetTitle string) string {
	return spreadsheetID + "\x00" + sheetTitle
}

func (c *memoryGridCache) GetGrid(spreadsheetID, sheetTitle string) (grid *SheetGrid, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var key = cacheKey(spreadsheetID, sheetTitle)
	entry, found := c.grids[key]
	if !found {
		return
	}
	if c.now().After(entry.expires) {
		delete(c.grids, key)
		return
	}
	return entry.value, true
}

func (c *memoryGridCache) PutGrid(spreadsheetID, sheetTitle string, grid *SheetGrid, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grids[cacheKey(spreadsheetID, sheetTitle)] = cacheEntry[*SheetGrid]{value: grid, expires: c.now().Add(ttl)}
}

func (c *memoryGridCache) InvalidateGrid(spreadsheetID, sheetTitle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.grids, cacheKey(spreadsheetID, sheetTitle))
}

func (c *memoryGridCache) GetSheetID(spreadsheetID, sheetTitle string) (sheetID int64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var key = cacheKey(spreadsheetID, sheetTitle)
	entry, found := c.ids[key]
	if !found {
		return
	}
	if c.now().After(entry.expires) {
		delete(c.ids, key)
		return
	}
	return entry.value, true
}

func (c *memoryGridCache) PutSheetID(spreadsheetID, sheetTitle string, sheetID int64, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[cacheKey(spreadsheetID, sheetTitle)] = cacheEntry[int64]{value: sheetID, expires: c.now().Add(ttl)}
}

func (c *memoryGridCache) InvalidateSheetID(spreadsheetID, sheetTitle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, cacheKey(spreadsheetID, sheetTitle))
}
