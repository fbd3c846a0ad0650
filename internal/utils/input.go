package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// ErrNoInput is returned by Input when there are neither args nor stdin data.
var ErrNoInput = errors.New("found no input, set args or pipe in some string")

// Input returns the args joined by space. If there are no args and stdin
// isn't a terminal, all of stdin is returned instead.
func Input(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if !hasData(stdin) {
		return "", ErrNoInput
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("read %v bytes from stdin\n", len(b)))
	}
	return string(b), nil
}

func hasData(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}
