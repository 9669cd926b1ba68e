// relayctl administers channels on a control server and posts messages to
// a relay server.
//
// Usage:
//
//	relayctl put-channel -f channel.yaml
//	relayctl delete-channel DESCRIPTOR
//	relayctl list-channels [--page N] [--per-page N] [--all]
//	relayctl send-message --descriptor D --token T --subject S --content C
//	relayctl schema KIND
//
// Server URLs and credentials come from --config, --env-file, the
// RELAYWIRE_* environment variables and the global flags, in increasing
// order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/reoring/relaywire/config"
	"github.com/reoring/relaywire/control"
	"github.com/reoring/relaywire/relay"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks command-line mistakes, which exit with status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet) // registers command-specific flags
	run     func(ctx context.Context, env *env, fs *pflag.FlagSet) error
}

var commands = []command{
	{name: "put-channel", summary: "create or overwrite a channel from a JSON or YAML file", flags: putChannelFlags, run: putChannel},
	{name: "delete-channel", summary: "delete the channel with the given descriptor", run: deleteChannel},
	{name: "list-channels", summary: "list channels as JSON", flags: listChannelsFlags, run: listChannels},
	{name: "send-message", summary: "post a message on a channel", flags: sendMessageFlags, run: sendMessage},
	{name: "schema", summary: "print the JSON Schema of a record (Entity, Channel, ChannelsPage, Message)", run: printSchema},
}

type globalFlags struct {
	configPath string
	envFile    string
	controlURL string
	relayURL   string
	logLevel   string
	timeout    time.Duration
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&g.envFile, "env-file", "", "path to a dotenv file")
	fs.StringVar(&g.controlURL, "control-url", "", "control server base URL")
	fs.StringVar(&g.relayURL, "relay-url", "", "relay server base URL")
	fs.StringVar(&g.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	fs.DurationVar(&g.timeout, "timeout", 0, "overall timeout of the command (default 30s)")
}

// env is what a command runs against.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	stdout io.Writer
}

func (e *env) controlClient() (*control.Client, error) {
	if err := e.cfg.RequireControl(); err != nil {
		return nil, err
	}
	return control.NewClient(e.cfg.Control.URL,
		control.WithAuth(e.cfg.ControlAuth()),
		control.WithLogger(e.logger),
	)
}

func (e *env) relayClient() (*relay.Client, error) {
	if err := e.cfg.RequireRelay(); err != nil {
		return nil, err
	}
	return relay.NewClient(e.cfg.Relay.URL, relay.WithLogger(e.logger))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	err := runCommand(cmd, args[1:], stdout, stderr)
	if err == nil {
		return 0
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func runCommand(cmd *command, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("relayctl "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globalFlags
	g.register(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}

	cfg, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return err
	}
	if g.controlURL != "" {
		cfg.Control.URL = g.controlURL
	}
	if g.relayURL != "" {
		cfg.Relay.URL = g.relayURL
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.timeout > 0 {
		cfg.Timeout = g.timeout
	}
	if err := cfg.Validate(); err != nil {
		return usagef("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	return cmd.run(ctx, &env{cfg: cfg, logger: cfg.NewLogger(stderr), stdout: stdout}, fs)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "relayctl administers mail relay channels and posts messages.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:\n  relayctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'relayctl <command> --help' for the flags of a command.")
}
