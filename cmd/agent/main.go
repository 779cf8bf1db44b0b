package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	agent "github.com/getherd/go-agent"
	gateway "github.com/getherd/go-agent/pkg/gateway"
	httpclient "github.com/getherd/go-agent/pkg/httpclient"
	client "github.com/mutablelogic/go-client"
	types "github.com/mutablelogic/go-server/pkg/types"
	otel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// Backend
	HTTP `embed:"" help:"Backend configuration"`
	Auth `embed:"" help:"Authentication configuration"`

	// User
	User string `env:"HERD_USER_ID" help:"User identifier, used for the daily digest and launcher preferences"`

	// Context
	ctx    context.Context
	tracer trace.Tracer
	term   *Term
	prefs  *gateway.Prefs
}

type HTTP struct {
	Addr    string        `env:"HERD_ADDR" default:"localhost:8084" help:"Backend address (host:port)"`
	Prefix  string        `env:"HERD_PREFIX" default:"/api" help:"Backend path prefix"`
	Timeout time.Duration `help:"Request timeout"`
}

type Auth struct {
	Token string `env:"HERD_TOKEN" help:"Bearer token for the backend"`
}

type CLI struct {
	Globals

	// Commands
	Chat     ChatCmd          `cmd:"" help:"Start an interactive conversation"`
	History  HistoryCmd       `cmd:"" help:"Print the stored conversation"`
	Refresh  RefreshCmd       `cmd:"" help:"Discard the conversation and start a new session"`
	Research ResearchCommands `cmd:"" help:"Inspect or close research jobs"`
	Digest   DigestCmd        `cmd:"" help:"Fetch the daily digest"`
	Version  VersionCmd       `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Assistant gateway command line interface"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{},
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.tracer = otel.Tracer(execName())

	// Create a terminal
	term, err := NewTerm(os.Stdout)
	if err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
	cli.Globals.term = term

	// Preferences live under the user config directory
	if dir, err := os.UserConfigDir(); err != nil {
		cmd.FatalIfErrorf(err)
		return
	} else if prefs, err := gateway.NewPrefs(filepath.Join(dir, execName(), "prefs.json")); err != nil {
		cmd.FatalIfErrorf(err)
		return
	} else {
		cli.Globals.prefs = prefs
	}

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns an httpclient.Client configured from the global flags.
func (g *Globals) Client() (*httpclient.Client, error) {
	endpoint, opts, err := g.clientEndpoint()
	if err != nil {
		return nil, err
	}
	return httpclient.New(endpoint, g.Auth.Token, opts...)
}

// Gateway returns a conversation gateway bound to a UI.
func (g *Globals) Gateway(ui agent.UI) (*gateway.Gateway, error) {
	backend, err := g.Client()
	if err != nil {
		return nil, err
	}
	return gateway.New(gateway.Config{
		Backend: backend,
		UI:      ui,
		Prefs:   g.prefs,
		UserID:  g.User,
	})
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

// clientEndpoint returns the endpoint URL and client options from the
// global HTTP flags.
func (g *Globals) clientEndpoint() (string, []client.ClientOpt, error) {
	scheme := "http"
	host, port, err := net.SplitHostPort(g.HTTP.Addr)
	if err != nil {
		return "", nil, err
	}

	// Default host to localhost if empty (e.g., ":8084")
	if host == "" {
		host = "localhost"
	}

	// Parse port
	portn, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", nil, err
	}
	if portn == 443 {
		scheme = "https"
	}

	// Client options
	opts := []client.ClientOpt{}
	if g.Debug || g.Verbose {
		opts = append(opts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.tracer != nil {
		opts = append(opts, client.OptTracer(g.tracer))
	}
	if g.HTTP.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.HTTP.Timeout))
	}

	return fmt.Sprintf("%s://%s:%v%s", scheme, host, portn, types.NormalisePath(g.HTTP.Prefix)), opts, nil
}
