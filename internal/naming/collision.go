package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out target paths to the files of one batch. When two
// inputs resolve to the same target (two clips recorded in the same second,
// or same-named clips from different folders rendered into one directory)
// the later claimant gets a " - dupN" variant. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // target → input that claimed it
	counters map[string]int    // requested target → next dup number
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim returns the target input may use. requested is returned unchanged
// when it is free or already held by input.
func (cr *CollisionResolver) Claim(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := filepath.Clean(requested)
	if owner, taken := cr.owners[key]; !taken || owner == input {
		cr.owners[key] = input
		return requested
	}

	ext := filepath.Ext(requested)
	stem := strings.TrimSuffix(requested, ext)
	n := max(cr.counters[key], 1)
	for ; ; n++ {
		candidate := fmt.Sprintf("%s - dup%d%s", stem, n, ext)
		ck := filepath.Clean(candidate)
		if owner, taken := cr.owners[ck]; !taken || owner == input {
			cr.counters[key] = n + 1
			cr.owners[ck] = input
			return candidate
		}
	}
}

// Owner reports which input claimed target, if any.
func (cr *CollisionResolver) Owner(target string) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	owner, ok := cr.owners[filepath.Clean(target)]
	return owner, ok
}
