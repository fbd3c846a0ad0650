package agiml

import (
	"context"
	"fmt"

	"github.com/baalimago/agiml/internal/settings"
	"github.com/baalimago/agiml/internal/spec"
	"github.com/baalimago/agiml/internal/transform"
	"github.com/baalimago/agiml/internal/utils"
	"github.com/baalimago/agiml/pkg/agiml/models"
)

type config struct {
	configDir string
	overrides settings.Overrides
	specText  string
}

// Option configures the middleware constructed by New.
type Option func(*config)

// WithConfigDir sets the directory holding agimlConfig.json and, unless
// WithSpecDir is used, the specs directory.
func WithConfigDir(dir string) Option {
	return func(c *config) {
		c.configDir = dir
	}
}

// WithEndpoint overrides the image generation endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.overrides.Endpoint = endpoint
	}
}

// WithSpec selects the specification by name, loaded from the spec dir.
func WithSpec(name string) Option {
	return func(c *config) {
		c.overrides.Spec = name
	}
}

// WithSpecDir sets the directory, or http(s) base URL, of the specifications.
func WithSpecDir(dir string) Option {
	return func(c *config) {
		c.overrides.SpecDir = dir
	}
}

// WithSpecText uses text as the specification instead of loading one.
func WithSpecText(text string) Option {
	return func(c *config) {
		c.specText = text
	}
}

// New constructs the agiml middleware. Settings are resolved from the config
// dir, environment and options, then the specification is loaded. Failure to
// load the specification is an error.
//
// Default configuration:
//   - ConfigDir: "$HOME/.config/.agiml", or AGIML_CONFIG_HOME
//   - Spec:      "minimal", read from <ConfigDir>/specs/minimal.agiml
//   - Endpoint:  "https://defactofficial-mmapi-2.hf.space/api/generate"
func New(ctx context.Context, opts ...Option) (models.Middleware, error) {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.configDir == "" {
		dir, err := utils.GetAgimlConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find config dir: %w", err)
		}
		c.configDir = dir
	}
	s, err := settings.Load(c.configDir, c.overrides)
	if err != nil {
		return nil, err
	}
	var mw *transform.Middleware
	if c.specText != "" {
		mw, err = transform.New(s, c.specText)
	} else {
		mw, err = transform.Load(ctx, s, spec.NewSource(s.SpecDir))
	}
	if err != nil {
		return nil, err
	}
	return mw, nil
}
