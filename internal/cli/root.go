// Package cli implements the complaints command-line interface: the cobra
// command tree, configuration loading, and the interactive menu shell.
package cli

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/complaints/internal/complaint"
	"github.com/mesh-intelligence/complaints/internal/logging"
)

// Version is the release version, overridable with -ldflags.
var Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
}

// NewRootCmd creates the top-level "complaints" command with global flags
// and all subcommands registered. Run without a subcommand it starts the
// interactive menu.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "complaints",
		Short: "Track complaints and their history in a local SQLite file",
		Long: `complaints records complaints, updates their status and department,
and keeps a history of every change. Run it without arguments to open the
interactive menu.`,
		Version: Version,
		Args:    cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, f)
		},
	}

	root.PersistentFlags().StringVar(&f.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "data directory holding the database (default: current directory)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(f))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}

// runShell opens the store for the lifetime of the interactive session.
func runShell(cmd *cobra.Command, f *rootFlags) error {
	s, err := loadSettings(cmd, f)
	if err != nil {
		return err
	}

	log, err := logging.New(cmd.ErrOrStderr(), s.LogLevel)
	if err != nil {
		return err
	}
	log = log.With().Str("session_id", newSessionID()).Logger()

	backend, err := attachBackend(s.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Detach(); err != nil {
			log.Warn().Err(err).Msg("detach store")
		}
	}()

	log.Info().Str("db", backend.Path()).Msg("session started")
	svc := complaint.NewService(backend, complaint.WithLogger(log))
	return NewShell(svc, cmd.InOrStdin(), cmd.OutOrStdout(), log).Run(cmd.Context())
}

// newSessionID generates a UUID v7 that tags every log line of a session.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
