package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClaimed is returned when a second input resolves to an output path an
// earlier input in the same run already owns.
var ErrClaimed = errors.New("output path already claimed by another input")

// Claims tracks output paths claimed by input files during one run. BIDS
// basenames carry meaning, so a clash is reported rather than renamed
// around. All methods are goroutine-safe.
type Claims struct {
	mu     sync.Mutex
	owners map[string]string // output path → input path that owns it
}

// NewClaims creates a ready-to-use claim set.
func NewClaims() *Claims {
	return &Claims{owners: make(map[string]string)}
}

// Claim records input as the owner of output. Claiming a path already owned
// by the same input is a no-op.
func (c *Claims) Claim(input, output string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, exists := c.owners[output]
	if exists && owner != input {
		return fmt.Errorf("%w: %s (by %s)", ErrClaimed, output, owner)
	}
	c.owners[output] = input
	return nil
}

// Owner returns the input that claimed output, if any.
func (c *Claims) Owner(output string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[output]
	return owner, ok
}
