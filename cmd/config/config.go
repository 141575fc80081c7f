package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-docnav/pkg/catalog"
	"github.com/mattsolo1/grove-docnav/pkg/feed"
	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

var (
	cfgFile string
	Verbose bool
	Offline bool
)

// Settings is the resolved configuration.
type Settings struct {
	BackendURL      string        `mapstructure:"backend_url"`
	Source          string        `mapstructure:"source"`
	DataDir         string        `mapstructure:"data_dir"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	Retries         uint64        `mapstructure:"retries"`
	DuplicatePolicy string        `mapstructure:"duplicate_policy"`
	Exclude         []string      `mapstructure:"exclude"`
	CacheSize       int           `mapstructure:"cache_size"`
	LogLevel        string        `mapstructure:"log_level"`
	Color           bool          `mapstructure:"color"`
}

// InitConfig wires viper to the config file, the environment and .env.
func InitConfig() error {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "docnav"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DOCNAV")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func setDefaults() {
	home, _ := os.UserHomeDir()
	viper.SetDefault("backend_url", "")
	viper.SetDefault("source", "backend")
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "docnav"))
	viper.SetDefault("request_timeout", "10s")
	viper.SetDefault("retries", 3)
	viper.SetDefault("duplicate_policy", string(tree.DuplicateKeepLast))
	viper.SetDefault("exclude", []string{})
	viper.SetDefault("cache_size", 256)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("color", true)
}

// Load returns the settings currently held by viper.
func Load() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if Offline {
		s.Source = "catalog"
	}
	return &s, nil
}

// NewLogger builds the stderr logger for the configured level.
func NewLogger(s *Settings) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if lvl, err := logrus.ParseLevel(s.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// Runtime bundles the service with the resources it holds open.
type Runtime struct {
	Settings *Settings
	Service  *service.Service
	Logger   *logrus.Logger
	catalog  *catalog.Catalog
}

// Close releases the catalog.
func (r *Runtime) Close() error {
	if r == nil || r.catalog == nil {
		return nil
	}
	return r.catalog.Close()
}

// InitService builds the service described by the settings.
func InitService(s *Settings, logger *logrus.Logger) (*Runtime, error) {
	policy, err := tree.ParseDuplicatePolicy(s.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(filepath.Join(s.DataDir, "catalog.db"))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	var client *feed.Client
	if s.BackendURL != "" {
		client, err = feed.NewClient(s.BackendURL,
			feed.WithTimeout(s.RequestTimeout),
			feed.WithRetries(s.Retries),
			feed.WithLogger(logger),
		)
		if err != nil {
			_ = cat.Close()
			return nil, err
		}
	}

	provider, err := resolveProvider(s.Source, client, cat, logger)
	if err != nil {
		_ = cat.Close()
		return nil, err
	}

	opts := []service.Option{
		service.WithCatalog(cat),
		service.WithLogger(logger),
	}
	if client != nil {
		opts = append(opts, service.WithBackend(client))
	}

	svc, err := service.New(&service.Config{
		DuplicatePolicy: policy,
		Exclude:         s.Exclude,
		CacheSize:       s.CacheSize,
	}, provider, opts...)
	if err != nil {
		_ = cat.Close()
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}

	return &Runtime{Settings: s, Service: svc, Logger: logger, catalog: cat}, nil
}

// resolveProvider maps the source setting to a feed provider.
func resolveProvider(source string, client *feed.Client, cat *catalog.Catalog, logger *logrus.Logger) (feed.Provider, error) {
	kind, arg, _ := strings.Cut(source, ":")
	switch kind {
	case "", "backend":
		if client == nil {
			return nil, errors.New("no backend_url configured; set DOCNAV_BACKEND_URL or use --source file:<path>|dir:<path>|catalog")
		}
		return client, nil
	case "file":
		if arg == "" {
			return nil, errors.New("source file: needs a path")
		}
		return feed.NewFileProvider(arg), nil
	case "dir":
		if arg == "" {
			return nil, errors.New("source dir: needs a path")
		}
		return feed.NewDirProvider(arg, logger), nil
	case "catalog":
		return cat, nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

// AddGlobalFlags registers the flags every command shares.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/docnav/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&Offline, "offline", false, "Build from the local catalog instead of the configured source")
	cmd.PersistentFlags().String("source", "", "Listing source: backend, file:<path>, dir:<path> or catalog")
	cmd.PersistentFlags().String("backend-url", "", "Document backend base URL")
	cmd.PersistentFlags().String("duplicate-policy", "", "Which id a shared path keeps: last, first or reject")
	cobra.CheckErr(viper.BindPFlag("source", cmd.PersistentFlags().Lookup("source")))
	cobra.CheckErr(viper.BindPFlag("backend_url", cmd.PersistentFlags().Lookup("backend-url")))
	cobra.CheckErr(viper.BindPFlag("duplicate_policy", cmd.PersistentFlags().Lookup("duplicate-policy")))
}
