package accessory

import (
	"sync"

	"github.com/hap-go/hap-go/pkg/engine"
)

// The engine is initialized once per process, by the first accessory that
// registers. The guard is shared by all accessories regardless of engine.
var engineInit struct {
	mu   sync.Mutex
	done bool
}

// initEngine calls e.Init unless an earlier registration already did. A
// failed Init is not recorded, so the next registration tries again.
func initEngine(e engine.Engine) error {
	engineInit.mu.Lock()
	defer engineInit.mu.Unlock()

	if engineInit.done {
		return nil
	}
	if err := e.Init(); err != nil {
		return err
	}
	engineInit.done = true
	return nil
}

// EngineInitialized reports whether the process-wide engine init has run.
func EngineInitialized() bool {
	engineInit.mu.Lock()
	defer engineInit.mu.Unlock()
	return engineInit.done
}

// ResetEngineInit clears the process-wide engine init flag so the next
// Register initializes the engine again. Call it after shutting the engine
// down, or between tests.
func ResetEngineInit() {
	engineInit.mu.Lock()
	engineInit.done = false
	engineInit.mu.Unlock()
}
