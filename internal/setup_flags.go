package internal

import (
	"flag"
	"fmt"
	"io"

	"github.com/baalimago/agiml/internal/settings"
	"github.com/baalimago/agiml/internal/utils"
)

type Configurations struct {
	Endpoint string
	Spec     string
	SpecDir  string
	Addr     string
}

var defaultFlags = Configurations{
	Endpoint: "",
	Spec:     "",
	SpecDir:  "",
	Addr:     ":8080",
}

func (c Configurations) overrides() settings.Overrides {
	return settings.Overrides{
		Endpoint: c.Endpoint,
		Spec:     c.Spec,
		SpecDir:  c.SpecDir,
	}
}

func setupFlags(args []string, defaults Configurations, out io.Writer) (Configurations, []string, error) {
	fs := flag.NewFlagSet("agiml", flag.ContinueOnError)
	fs.SetOutput(out)

	eShort := fs.String("e", defaults.Endpoint, "Set the image generation endpoint. Mutually exclusive with endpoint flag.")
	eLong := fs.String("endpoint", defaults.Endpoint, "Set the image generation endpoint. Mutually exclusive with e flag.")

	sShort := fs.String("s", defaults.Spec, "Set the name of the specification to load. Mutually exclusive with spec flag.")
	sLong := fs.String("spec", defaults.Spec, "Set the name of the specification to load. Mutually exclusive with s flag.")

	sdShort := fs.String("sd", defaults.SpecDir, "Set the directory, or http(s) url, holding the specifications. Mutually exclusive with spec-dir flag.")
	sdLong := fs.String("spec-dir", defaults.SpecDir, "Set the directory, or http(s) url, holding the specifications. Mutually exclusive with sd flag.")

	aShort := fs.String("a", defaults.Addr, "Set the address the sidecar listens on. Mutually exclusive with addr flag.")
	aLong := fs.String("addr", defaults.Addr, "Set the address the sidecar listens on. Mutually exclusive with a flag.")

	if err := fs.Parse(args); err != nil {
		return Configurations{}, nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	var ret Configurations
	var err error
	if ret.Endpoint, err = utils.ReturnNonDefault(*eShort, *eLong, defaults.Endpoint); err != nil {
		return Configurations{}, nil, flagError(err, "e", "endpoint")
	}
	if ret.Spec, err = utils.ReturnNonDefault(*sShort, *sLong, defaults.Spec); err != nil {
		return Configurations{}, nil, flagError(err, "s", "spec")
	}
	if ret.SpecDir, err = utils.ReturnNonDefault(*sdShort, *sdLong, defaults.SpecDir); err != nil {
		return Configurations{}, nil, flagError(err, "sd", "spec-dir")
	}
	if ret.Addr, err = utils.ReturnNonDefault(*aShort, *aLong, defaults.Addr); err != nil {
		return Configurations{}, nil, flagError(err, "a", "addr")
	}
	return ret, fs.Args(), nil
}

func flagError(err error, short, long string) error {
	return fmt.Errorf("flags: '%v' and '%v' are mutually exclusive: %w", short, long, err)
}
