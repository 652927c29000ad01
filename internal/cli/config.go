package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/complaints/internal/logging"
	"github.com/mesh-intelligence/complaints/internal/paths"
	"github.com/mesh-intelligence/complaints/internal/sqlite"
	"github.com/mesh-intelligence/complaints/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys in config.yaml.
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyDBFile   = "db_file"
	cfgKeyLogLevel = "log_level"

	// Environment overrides for keys that have no directory precedence chain.
	envLogLevel = "COMPLAINTS_LOG_LEVEL"
	envDBFile   = "COMPLAINTS_DB_FILE"
)

// settings is the resolved configuration of one command run.
type settings struct {
	ConfigDir string
	Store     types.Config
	LogLevel  string
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml or config directory is not an error. logLevelFlag, when
// non-nil, overrides log_level if the user set it.
func loadConfig(configDir string, logLevelFlag *pflag.Flag) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDBFile, types.DefaultDBFile)
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.BindEnv(cfgKeyLogLevel, envLogLevel); err != nil {
		return nil, fmt.Errorf("bind %s: %w", envLogLevel, err)
	}
	if err := v.BindEnv(cfgKeyDBFile, envDBFile); err != nil {
		return nil, fmt.Errorf("bind %s: %w", envDBFile, err)
	}
	if logLevelFlag != nil {
		if err := v.BindPFlag(cfgKeyLogLevel, logLevelFlag); err != nil {
			return nil, fmt.Errorf("bind --log-level: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// loadSettings resolves directories and config.yaml for cmd.
func loadSettings(cmd *cobra.Command, f *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir, cmd.Root().PersistentFlags().Lookup("log-level"))
	if err != nil {
		return settings{}, err
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	store := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		DBFile:  v.GetString(cfgKeyDBFile),
	}
	if err := store.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid config: %w", err)
	}

	return settings{
		ConfigDir: configDir,
		Store:     store,
		LogLevel:  v.GetString(cfgKeyLogLevel),
	}, nil
}

// attachBackend creates a SQLite backend and attaches it. The caller must
// call Detach on the returned backend.
func attachBackend(cfg types.Config) (*sqlite.Backend, error) {
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return backend, nil
}
