package delivery

import (
	"sync"
	"sync/atomic"
)

// resourceGuard coalesces concurrent passes per resource type. It is a
// best-effort single-flight flag, not a fair mutex: a trigger arriving while
// a pass holds the flag is skipped entirely, never queued.
type resourceGuard struct {
	flags sync.Map // ResourceType -> *atomic.Bool
}

func (g *resourceGuard) acquire(resource ResourceType) bool {
	flag, _ := g.flags.LoadOrStore(resource, new(atomic.Bool))

	return flag.(*atomic.Bool).CompareAndSwap(false, true)
}

func (g *resourceGuard) release(resource ResourceType) {
	flag, ok := g.flags.Load(resource)
	if !ok {
		return
	}
	flag.(*atomic.Bool).Store(false)
}
