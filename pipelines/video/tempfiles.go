package video

import (
	"errors"
	"log"
	"os"
	"sync"
)

// TempRegistry tracks files and directories created during a run
type TempRegistry struct {
	mu    sync.Mutex
	paths []string
}

func (r *TempRegistry) Add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *TempRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// Cleanup removes every registered path, newest first. Failures are logged
// and do not stop the sweep; paths that are already gone are not errors.
func (r *TempRegistry) Cleanup() {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	for i := len(paths) - 1; i >= 0; i-- {
		if err := os.RemoveAll(paths[i]); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[VIDEO] Could not remove temp path %s: %v", paths[i], err)
		}
	}
}
