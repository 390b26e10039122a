package cache

import "sync"

// generations counts invalidations per page path within this process. A
// view loaded while its path was invalidated is stale and must not be
// written back.
type generations struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func (g *generations) current(path string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[path]
}

func (g *generations) bump(paths ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counts == nil {
		g.counts = make(map[string]uint64)
	}
	for _, path := range paths {
		g.counts[path]++
	}
}

// guard runs set only while path is still at gen. The lock is held across
// set so an invalidation either sees the written value or wins the race.
func (g *generations) guard(path string, gen uint64, set func() error) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counts[path] != gen {
		return false, nil
	}
	if err := set(); err != nil {
		return false, err
	}
	return true, nil
}
