// Package clipboard writes to the local system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// System implements Copier using github.com/atotto/clipboard.
type System struct{}

// NewSystem returns the system clipboard writer.
func NewSystem() *System {
	return &System{}
}

// Copy writes text to the system clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: write: %w", err)
	}
	return nil
}

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

var _ Copier = (*System)(nil)
