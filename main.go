package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/agiml/internal"
	"github.com/baalimago/agiml/internal/utils"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/joho/godotenv"
)

const usage = `agiml - speak AGIML with the model, markdown with the user

Prerequisites:
  - Place specifications as <name>.agiml in the specs directory of the config dir
    (default: <UserConfigDir>/.agiml/specs, override the config dir with AGIML_CONFIG_HOME)
  - (Optional) Set AGIML_ENDPOINT, AGIML_SPEC or AGIML_SPEC_DIR, or put them in a .env file
  - (Optional) Set DEBUG=true for verbose output

Usage: agiml [flags] <command>

Flags:
  -e, -endpoint string         Set the image generation endpoint. (default is found in agimlConfig.json)
  -s, -spec string             Set the name of the specification to load. (default is found in agimlConfig.json)
  -sd, -spec-dir string        Set the directory, or http(s) url, holding the specifications.
  -a, -addr string             Set the address the sidecar listens on. (default ':8080')

Commands:
  h|help                        Display this help message
  v|version                     Display the version
  s|settings                    Print the resolved settings
  w|wrap      <text>            Wrap text in a user envelope
  u|unwrap    <text>            Strip the assistant envelope from text
  c|convert   <text>            Strip the envelope and turn image directives into markdown
  b|before                      Read a conversation as json on stdin, print it prepared for the model
  a|after                       Read a conversation as json on stdin, print it with the response converted
  serve                         Run the http sidecar

Text is read from stdin when no <text> is given.

Examples:
  - agiml wrap "Draw me a hamster"
  - agiml convert '<image width="256">a red fox</image>'
  - curl -s some-model | agiml c
  - agiml -s verbose before < conversation.json
  - agiml -a :9090 serve
`

func main() {
	ancli.SetupSlog()
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd, err := internal.Setup(ctx, usage, args)
	if err != nil {
		if errors.Is(err, utils.ErrUserInitiatedExit) {
			return 0
		}
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}
	err = cmd.Run(ctx)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("things seems to have worked out. Bye bye! 🚀\n")
	}
	return 0
}
