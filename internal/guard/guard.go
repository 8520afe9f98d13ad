// Package guard provides the single-flight guard shared by the client stores.
//
// A Guard is a two-state machine, Idle and Processing, backed by a weighted
// semaphore of capacity one. Enter is the only Idle→Processing transition and
// fails fast instead of waiting; the returned release func is the only
// Processing→Idle transition.
package guard

import (
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

type State int

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "processing"
	}

	return "idle"
}

type Guard struct {
	sem *semaphore.Weighted

	mu    sync.Mutex
	state State
}

func New() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Enter moves the guard to Processing. It returns serviceerr.ErrStillProcessing
// if another operation holds the guard. The release func must be called
// exactly once; later calls are no-ops.
func (g *Guard) Enter() (release func(), _ error) {
	if !g.sem.TryAcquire(1) {
		return nil, serviceerr.ErrStillProcessing
	}

	g.setState(Processing)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.setState(Idle)
			g.sem.Release(1)
		})
	}, nil
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Guard) Processing() bool {
	return g.State() == Processing
}

func (g *Guard) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}
