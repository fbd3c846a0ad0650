package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/baalimago/agiml/internal/envelope"
	"github.com/baalimago/agiml/internal/metrics"
	"github.com/baalimago/agiml/internal/server"
	"github.com/baalimago/agiml/internal/settings"
	"github.com/baalimago/agiml/internal/spec"
	"github.com/baalimago/agiml/internal/transform"
	"github.com/baalimago/agiml/internal/utils"
	"github.com/baalimago/agiml/pkg/agiml/models"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
)

type Mode int

const (
	HELP Mode = iota
	VERSION
	SETTINGS
	WRAP
	UNWRAP
	CONVERT
	BEFORE
	AFTER
	SERVE
)

// Command is a fully configured invocation, ready to run.
type Command interface {
	Run(ctx context.Context) error
}

type commandFunc func(ctx context.Context) error

func (f commandFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func getModeFromArgs(cmd string) (Mode, error) {
	switch cmd {
	case "help", "h":
		return HELP, nil
	case "version", "v":
		return VERSION, nil
	case "settings", "s":
		return SETTINGS, nil
	case "wrap", "w":
		return WRAP, nil
	case "unwrap", "u":
		return UNWRAP, nil
	case "convert", "c":
		return CONVERT, nil
	case "before", "b":
		return BEFORE, nil
	case "after", "a":
		return AFTER, nil
	case "serve":
		return SERVE, nil
	default:
		return HELP, fmt.Errorf("unknown command: '%s'", cmd)
	}
}

// Setup parses args and returns the command they describe. Help and version
// are printed directly, returning utils.ErrUserInitiatedExit.
func Setup(ctx context.Context, usage string, args []string) (Command, error) {
	flagSet, rest, err := setupFlags(args, defaultFlags, os.Stderr)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		rest = []string{"help"}
	}
	mode, err := getModeFromArgs(rest[0])
	if err != nil {
		return nil, err
	}
	cmdArgs := rest[1:]

	switch mode {
	case HELP:
		fmt.Print(usage)
		return nil, utils.ErrUserInitiatedExit
	case VERSION:
		return nil, printVersion()
	case WRAP:
		return commandFunc(func(context.Context) error {
			return withInput(cmdArgs, func(in string) string {
				return envelope.WrapUser(in)
			})
		}), nil
	case UNWRAP:
		return commandFunc(func(context.Context) error {
			return withInput(cmdArgs, envelope.Unwrap)
		}), nil
	}

	configDir, err := utils.GetAgimlConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find config dir: %w", err)
	}
	s, err := settings.Load(configDir, flagSet.overrides())
	if err != nil {
		return nil, err
	}

	switch mode {
	case SETTINGS:
		return commandFunc(func(context.Context) error {
			return printJSON(s)
		}), nil
	case CONVERT:
		c := transform.NewConverter(s)
		return commandFunc(func(context.Context) error {
			return withInput(cmdArgs, func(in string) string {
				out, err := c.ProcessResponse(in)
				if err != nil {
					ancli.Warnf("kept original markup for some directives: %v\n", err)
				}
				return out
			})
		}), nil
	}

	m := metrics.New()
	mw, err := transform.Load(ctx, s, spec.NewSource(s.SpecDir), transform.WithObserver(m))
	if err != nil {
		return nil, err
	}

	switch mode {
	case BEFORE:
		return commandFunc(func(ctx context.Context) error {
			return withConversation(ctx, mw.BeforeRequest)
		}), nil
	case AFTER:
		return commandFunc(func(ctx context.Context) error {
			return withConversation(ctx, mw.AfterResponse)
		}), nil
	case SERVE:
		h := server.NewHandler(mw, m)
		return commandFunc(func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() { shutdown.Monitor(cancel) }()
			return server.Serve(ctx, flagSet.Addr, h.Routes(nil))
		}), nil
	}
	return nil, errors.New("unhandled mode, this is a bug")
}

func withInput(args []string, fn func(string) string) error {
	in, err := utils.Input(args, os.Stdin)
	if err != nil {
		return err
	}
	fmt.Println(fn(in))
	return nil
}

func withConversation(ctx context.Context, fn func(context.Context, models.Conversation) (models.Conversation, error)) error {
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	var conv models.Conversation
	if err := json.Unmarshal(b, &conv); err != nil {
		return fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	out, err := fn(ctx, conv)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
