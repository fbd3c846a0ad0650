package spec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baalimago/agiml/internal/utils"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Extension of specification files.
const Extension = ".agiml"

// ErrMissingSpecification is returned when no specification text could be
// loaded. The transform must not run without one.
var ErrMissingSpecification = errors.New("missing specification")

// Source yields the specification text for a logical spec name.
type Source interface {
	Load(ctx context.Context, name string) (string, error)
}

// NewSource picks an HTTPSource for http(s) locations and a FileSource for
// anything else.
func NewSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{BaseURL: location}
	}
	return FileSource{Dir: location}
}

// FileSource reads <Dir>/<name>.agiml. A leading '~' in Dir is expanded.
type FileSource struct {
	Dir string
}

func (f FileSource) Load(_ context.Context, name string) (string, error) {
	dir, err := utils.ExpandHome(f.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingSpecification, err)
	}
	p := filepath.Join(dir, name+Extension)
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("loading spec from: '%v'\n", p))
	}
	b, err := utils.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("%w: '%v': %v", ErrMissingSpecification, p, err)
	}
	return nonEmpty(string(b), p)
}

func nonEmpty(text, from string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: '%v' is empty", ErrMissingSpecification, from)
	}
	return text, nil
}
