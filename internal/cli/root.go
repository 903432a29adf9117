// Package cli builds the ddogctl command tree. Every leaf command is one
// linear pipeline: resolve the time range, build the query or payload,
// call the API, normalize the response shape, render a table. Any failure
// short-circuits the rest and exits 1.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/45p1d4/ddogctl/internal/api"
	"github.com/45p1d4/ddogctl/internal/i18n"
)

// AppOptions configures the command tree.
type AppOptions struct {
	// Translator for help texts. Required; the language is fixed at
	// startup and never re-read from the environment.
	Translator *i18n.Translator

	// Stdout receives tables and debug dumps.
	Stdout io.Writer

	// Logger for transport debug logging.
	Logger *zap.Logger

	// Now supplies the reference instant for time expressions. Tests pin
	// it for reproducible ranges.
	Now func() time.Time

	// ClientFactory overrides credential resolution; tests point it at a
	// mock transport.
	ClientFactory func(contextName, configPath string, logger *zap.Logger) (*api.Client, error)
}

// App holds the state shared by all commands of one invocation.
type App struct {
	tr     *i18n.Translator
	stdout io.Writer
	logger *zap.Logger
	now    func() time.Time

	contextName string
	configPath  string

	clientFactory func(contextName, configPath string, logger *zap.Logger) (*api.Client, error)
}

// NewApp creates the App.
func NewApp(opts AppOptions) *App {
	if opts.Translator == nil {
		opts.Translator = i18n.New(i18n.LangES)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClientFactory == nil {
		opts.ClientFactory = api.NewFromContext
	}
	return &App{
		tr:            opts.Translator,
		stdout:        opts.Stdout,
		logger:        opts.Logger,
		now:           opts.Now,
		clientFactory: opts.ClientFactory,
	}
}

// NewRootCmd builds the full command tree.
func (a *App) NewRootCmd() *cobra.Command {
	tr := a.tr
	root := &cobra.Command{
		Use:           "ddogctl",
		Short:         tr.T("CLI de Datadog (ddogctl)", "Datadog CLI (ddogctl)"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.contextName, "context",
		"", tr.T("Nombre del contexto a usar desde el YAML", "Context name to use from YAML"))
	root.PersistentFlags().StringVar(&a.configPath, "config",
		"", tr.T("Ruta al archivo de configuración YAML", "Path to YAML config file"))

	root.AddCommand(a.newAuthCmd())
	root.AddCommand(a.newMonitorsCmd())
	root.AddCommand(a.newDashboardsCmd())
	root.AddCommand(a.newIncidentsCmd())
	root.AddCommand(a.newSyntheticsCmd())
	root.AddCommand(a.newLogsCmd())
	root.AddCommand(a.newAPMCmd())
	root.AddCommand(a.newServicesCmd())
	root.AddCommand(a.newMetricsCmd())
	root.AddCommand(a.newServiceCmd())
	root.AddCommand(a.newChecksCmd())
	root.AddCommand(a.newGuafCmd())
	return root
}

// client resolves credentials and builds the API client. No caching: each
// command invocation resolves once.
func (a *App) client() (*api.Client, error) {
	return a.clientFactory(a.contextName, a.configPath, a.logger)
}

// debugFlag registers the shared --debug flag. Important: never log
// secrets; the flag only controls payload/response verbosity.
func (a *App) debugFlag(cmd *cobra.Command, debug *bool) {
	cmd.Flags().BoolVar(debug, "debug", false,
		a.tr.T("Habilita salida de depuración (sin secretos)", "Enable debug output (no secrets)"))
}
