package tiling

import (
	"strconv"
	"sync"
)

// NameCounter hands out numeric workspace names, reusing the smallest
// released number first.
type NameCounter struct {
	mu    sync.Mutex
	inUse map[int]struct{}
}

// NewNameCounter creates a counter with no names in use.
func NewNameCounter() *NameCounter {
	return &NameCounter{inUse: make(map[int]struct{})}
}

// Next reserves and returns the smallest free positive number.
func (c *NameCounter) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 1
	for {
		if _, taken := c.inUse[n]; !taken {
			break
		}
		n++
	}
	c.inUse[n] = struct{}{}
	return strconv.Itoa(n)
}

// Reserve marks name as taken when it is numeric. Non-numeric names are
// ignored.
func (c *NameCounter) Reserve(name string) {
	n, ok := numericName(name)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inUse[n] = struct{}{}
}

// Release returns a numeric name to the pool.
func (c *NameCounter) Release(name string) {
	n, ok := numericName(name)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inUse, n)
}

// Reset releases every name.
func (c *NameCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inUse = make(map[int]struct{})
}

// numericName accepts only the canonical decimal form, so "01" and "+1"
// are ordinary names and never share a slot with "1".
func numericName(name string) (int, bool) {
	n, err := strconv.Atoi(name)
	if err != nil || n < 1 || strconv.Itoa(n) != name {
		return 0, false
	}
	return n, true
}

// LessName orders workspace names numerically when both are numeric and
// lexically otherwise, with numeric names first.
func LessName(a, b string) bool {
	na, aok := numericName(a)
	nb, bok := numericName(b)
	switch {
	case aok && bok:
		return na < nb
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}
