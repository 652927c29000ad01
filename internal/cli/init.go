package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/complaints/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	DBFile   string `yaml:"db_file"`
	LogLevel string `yaml:"log_level"`
}

func newInitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the complaints database",
		Long: `Create the configuration directory and a default config.yaml if missing,
then create the database schema. Running init again changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, f)
		},
	}
}

func runInit(cmd *cobra.Command, f *rootFlags) error {
	s, err := loadSettings(cmd, f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// Only pin data_dir when it was given explicitly; otherwise the
	// working-directory default stays in effect.
	cfg := configFile{
		Backend:  s.Store.Backend,
		DBFile:   s.Store.DBFileName(),
		LogLevel: s.LogLevel,
	}
	if f.dataDir != "" {
		cfg.DataDir = s.Store.DataDir
	}

	configPath := filepath.Join(s.ConfigDir, configFileExt)
	if err := writeConfigIfMissing(configPath, cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	backend, err := attachBackend(s.Store)
	if err != nil {
		return err
	}
	dbPath := backend.Path()
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config:   %s\n", configPath)
	fmt.Fprintf(out, "Database: %s\n", dbPath)
	fmt.Fprintln(out, "Complaints store initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml with cfg if the file does not
// exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string, cfg configFile) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if cfg.Backend == "" {
		cfg.Backend = types.BackendSQLite
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := []byte("# complaints CLI configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
