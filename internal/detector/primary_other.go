//go:build !(freebsd || linux || netbsd || openbsd || solaris || dragonfly)

package detector

import "errors"

func readPrimary() (string, error) {
	return "", errors.New("primary selection not available on this platform")
}
