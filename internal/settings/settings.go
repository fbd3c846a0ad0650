package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/baalimago/agiml/internal/utils"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// FileNames are the settings files looked for within the config dir, in order.
var FileNames = []string{"agimlConfig.json", "agimlConfig.yaml", "agimlConfig.yml"}

const DefaultEndpoint = "https://defactofficial-mmapi-2.hf.space/api/generate"

type OutputType string

const (
	IMAGE  OutputType = "image"
	SPEECH OutputType = "speech"
)

// Settings is resolved once and only read afterwards. Use the accessors for
// the slices, they return copies.
type Settings struct {
	// SpecDir is either a directory or an http(s) base URL holding
	// <Spec>.agiml files. Empty means <configDir>/specs.
	SpecDir              string       `json:"spec-dir" yaml:"spec-dir"`
	Spec                 string       `json:"spec" yaml:"spec"`
	Endpoint             string       `json:"endpoint" yaml:"endpoint"`
	EncodeParams         bool         `json:"encode-params" yaml:"encode-params"`
	SupportedOutputTypes []OutputType `json:"supported-output-types" yaml:"supported-output-types"`
	DefaultTools         []string     `json:"default-tools" yaml:"default-tools"`

	// Extra holds unrecognized keys of the settings file. They're kept
	// around, but otherwise ignored.
	Extra map[string]any `json:"-" yaml:"-"`
}

// Default returns a fresh copy of the default settings.
func Default() Settings {
	return Settings{
		SpecDir:              "",
		Spec:                 "minimal",
		Endpoint:             DefaultEndpoint,
		EncodeParams:         true,
		SupportedOutputTypes: []OutputType{IMAGE, SPEECH},
		DefaultTools:         []string{"hamster_removal", "python", "node"},
	}
}

var knownKeys = []string{
	"spec-dir",
	"spec",
	"endpoint",
	"encode-params",
	"supported-output-types",
	"default-tools",
}

func ValidateOutputType(outputType OutputType) error {
	switch outputType {
	case IMAGE, SPEECH:
		return nil
	default:
		return fmt.Errorf("invalid output type: %v", outputType)
	}
}

// Supports reports if links may be synthesized for outputType.
func (s Settings) Supports(outputType OutputType) bool {
	return slices.Contains(s.SupportedOutputTypes, outputType)
}

func (s Settings) Tools() []string {
	return slices.Clone(s.DefaultTools)
}

func (s Settings) OutputTypes() []OutputType {
	return slices.Clone(s.SupportedOutputTypes)
}

// Overrides are applied on top of the settings file. Zero values are ignored.
type Overrides struct {
	SpecDir  string
	Spec     string
	Endpoint string
}

// Apply returns a copy of s with every non-zero field of o set.
func (s Settings) Apply(o Overrides) Settings {
	if o.SpecDir != "" {
		s.SpecDir = o.SpecDir
	}
	if o.Spec != "" {
		s.Spec = o.Spec
	}
	if o.Endpoint != "" {
		s.Endpoint = o.Endpoint
	}
	return s
}

// FromEnv reads AGIML_SPEC_DIR, AGIML_SPEC and AGIML_ENDPOINT.
func FromEnv() Overrides {
	return Overrides{
		SpecDir:  os.Getenv("AGIML_SPEC_DIR"),
		Spec:     os.Getenv("AGIML_SPEC"),
		Endpoint: os.Getenv("AGIML_ENDPOINT"),
	}
}

// Validate the settings, returning the first issue found.
func (s Settings) Validate() error {
	if s.Spec == "" {
		return fmt.Errorf("spec name must be set")
	}
	if s.Endpoint == "" {
		return fmt.Errorf("endpoint must be set")
	}
	for _, ot := range s.SupportedOutputTypes {
		if err := ValidateOutputType(ot); err != nil {
			return err
		}
	}
	return nil
}

// Load the settings file in configDir on top of the defaults, then apply the
// environment and finally overrides. The spec dir defaults to configDir/specs.
func Load(configDir string, overrides Overrides) (Settings, error) {
	s, configPath, err := utils.LoadConfigFromFile(configDir, FileNames, misc.Pointer(Default()))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	extra, err := unknownKeys(configPath)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to find unknown settings keys: %w", err)
	}
	s.Extra = extra
	s = s.Apply(FromEnv()).Apply(overrides)
	if s.SpecDir == "" {
		s.SpecDir = filepath.Join(configDir, "specs")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in '%v': %w", configPath, err)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("resolved settings: %v\n", debug.IndentedJsonFmt(s)))
	}
	return s, nil
}

func unknownKeys(configPath string) (map[string]any, error) {
	b, err := utils.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	if err := utils.Unmarshal(configPath, b, &raw); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Noticef("ignoring unknown settings keys: %v\n", debug.IndentedJsonFmt(raw))
	}
	return raw, nil
}

// MarshalJSON includes Extra, which the struct tags otherwise hide.
func (s Settings) MarshalJSON() ([]byte, error) {
	type plain Settings
	out := map[string]any{}
	b, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return json.Marshal(out)
}
