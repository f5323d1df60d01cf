//go:build freebsd || linux || netbsd || openbsd || solaris || dragonfly

package detector

import (
	"fmt"

	"github.com/atotto/clipboard"
)

func readPrimary() (string, error) {
	clipboard.Primary = true
	defer func() { clipboard.Primary = false }()

	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read primary selection: %w", err)
	}
	return text, nil
}
