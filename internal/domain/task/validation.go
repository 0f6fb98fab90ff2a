package task

import (
	"fmt"
	"strings"
)

// ValidateName checks that name can be used as a single path segment.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// Validate checks name and status of every node in the subtree.
func (n *Node) Validate() error {
	for m := range n.All() {
		if err := ValidateName(m.Name); err != nil {
			return fmt.Errorf("task %d: %w", m.ID, err)
		}
		if !m.Status.Valid() {
			return fmt.Errorf("task %d: %w: %q", m.ID, ErrInvalidStatus, m.Status)
		}
	}
	return nil
}
