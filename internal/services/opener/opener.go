// Package opener launches local files in the platform's default application.
package opener

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
)

const errorMissingFileFormat = "opening %s: %w"

// Launcher opens local files with the system default handler.
type Launcher interface {
	Open(path string) error
}

// Service implements Launcher using github.com/pkg/browser.
type Service struct{}

// NewService constructs an opener service implementation.
func NewService() *Service {
	return &Service{}
}

// Open launches the file at path. The file must exist; the launch itself is
// fire-and-forget beyond the initial handoff to the platform.
func (service *Service) Open(path string) error {
	if _, statError := os.Stat(path); statError != nil {
		return fmt.Errorf(errorMissingFileFormat, path, statError)
	}
	return browser.OpenFile(path)
}

var _ Launcher = (*Service)(nil)
