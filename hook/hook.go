package hook

import (
	"fmt"
	"sync"

	"github.com/mensylisir/xmexec/util"
)

// Interface is a try/catch/finally style hook. Try runs the guarded work,
// Catch maps a Try failure to the returned error, and Finally always runs.
type Interface interface {
	Try() error
	Catch(err error) error
	Finally()
}

func Call(hook Interface) (err error) {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}

	defer hook.Finally()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during hook execution: %v", r)
		}
	}()

	tryErr := hook.Try()
	if tryErr != nil {
		err = hook.Catch(tryErr)
		return err
	}

	return nil
}

// CleanupStack collects named teardown functions and runs them in LIFO
// order. It is safe for concurrent Push and a single Run.
type CleanupStack struct {
	mu    sync.Mutex
	items []cleanupItem
}

type cleanupItem struct {
	name string
	fn   func() error
}

// Push registers fn under name. Nil functions are ignored.
func (s *CleanupStack) Push(name string, fn func() error) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, cleanupItem{name: name, fn: fn})
}

// Len returns the number of registered teardown functions.
func (s *CleanupStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run executes all registered functions newest-first, draining the stack.
// Every function runs even when earlier ones fail; the failures are
// combined into a single error.
func (s *CleanupStack) Run() error {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", items[i].name, err))
		}
	}
	return util.CombineErrors(errs...)
}
