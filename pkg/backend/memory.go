package backend

import (
	"context"
	"sync"
)

// Call records one query seen by a MemoryExecutor.
type Call struct {
	Query string
	Args  []string
}

// MemoryExecutor answers queries from an in-memory table keyed by one of
// the bound values, typically the user name.
type MemoryExecutor struct {
	keyArg int

	mu      sync.Mutex
	results map[string]*ResultSet
	err     error
	calls   []Call
}

// NewMemoryExecutor creates an executor that looks up results by the bound
// value at position keyArg (0 based).
func NewMemoryExecutor(keyArg int) *MemoryExecutor {
	return &MemoryExecutor{
		keyArg:  keyArg,
		results: make(map[string]*ResultSet),
	}
}

// SetResult sets the result returned when the key argument equals key.
func (m *MemoryExecutor) SetResult(key string, rs *ResultSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[key] = rs
}

// RemoveResult drops the result for key.
func (m *MemoryExecutor) RemoveResult(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, key)
}

// FailWith makes every following Execute return err.
func (m *MemoryExecutor) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the queries executed so far.
func (m *MemoryExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Execute implements Executor. Unknown keys yield an empty result.
func (m *MemoryExecutor) Execute(ctx context.Context, query string, args []string) (*ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Query: query, Args: append([]string(nil), args...)})
	if m.err != nil {
		return nil, m.err
	}

	if m.keyArg < len(args) {
		if rs, ok := m.results[args[m.keyArg]]; ok {
			return rs, nil
		}
	}
	return NewResultSet(2), nil
}
