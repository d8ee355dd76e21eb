package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-notes/pkg/events"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/search"
	"github.com/mattsolo1/grove-notes/pkg/service"
	"github.com/mattsolo1/grove-notes/pkg/store"
)

var (
	cfgFile string
	verbose bool
)

// Settings is the resolved configuration.
type Settings struct {
	DataDir        string
	LogLevel       string
	MaxFolderDepth int
	SaveDelay      time.Duration
	FilenameFormat models.FilenameFormat
	SearchEnabled  bool
	Store          store.Config
}

// Validate checks the settings.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.DataDir, validation.Required),
		validation.Field(&s.MaxFolderDepth, validation.Min(0)),
		validation.Field(&s.FilenameFormat, validation.Required, validation.By(func(v interface{}) error {
			if f, _ := v.(models.FilenameFormat); !f.Valid() {
				return fmt.Errorf("unknown filename format %q", f)
			}
			return nil
		})),
		validation.Field(&s.LogLevel, validation.By(func(v interface{}) error {
			_, err := logrus.ParseLevel(v.(string))
			return err
		})),
	)
}

func InitConfig() {
	// A missing .env file is fine; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "notes")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NOTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "notes"))
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("max_folder_depth", models.DefaultMaxFolderDepth)
	viper.SetDefault("save_delay", "0s")
	viper.SetDefault("filename_format", string(models.FilenameFormatTitle))
	viper.SetDefault("search.enabled", true)
	viper.SetDefault("store.backend", store.BackendFile)
	viper.SetDefault("store.redis_url", "redis://localhost:6379/0")
	viper.SetDefault("store.redis_key", store.DefaultKey)
	viper.SetDefault("store.postgres_url", "")
	viper.SetDefault("store.owner", store.DefaultKey)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Warning: could not read config:", err)
		}
	}
}

// Load resolves the settings from viper.
func Load() (*Settings, error) {
	s := &Settings{
		DataDir:        viper.GetString("data_dir"),
		LogLevel:       viper.GetString("log_level"),
		MaxFolderDepth: viper.GetInt("max_folder_depth"),
		SaveDelay:      viper.GetDuration("save_delay"),
		FilenameFormat: models.FilenameFormat(viper.GetString("filename_format")),
		SearchEnabled:  viper.GetBool("search.enabled"),
	}
	if verbose {
		s.LogLevel = "debug"
	}
	s.Store = store.Config{
		Backend:     viper.GetString("store.backend"),
		DataDir:     s.DataDir,
		RedisURL:    viper.GetString("store.redis_url"),
		RedisKey:    viper.GetString("store.redis_key"),
		PostgresURL: viper.GetString("store.postgres_url"),
		Owner:       viper.GetString("store.owner"),
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// NewLogger builds the process logger. Output goes to stderr so command
// output on stdout stays machine-readable.
func NewLogger(s *Settings) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// App bundles what commands need at run time.
type App struct {
	Settings *Settings
	Logger   *logrus.Logger
	Service  *service.Service
	Bus      *events.Bus

	st  store.Store
	idx *search.Index
}

// Open wires store, search index, event bus and service together.
func Open(ctx context.Context, s *Settings, logger *logrus.Logger) (*App, error) {
	entry := logrus.NewEntry(logger)
	st, err := store.Open(ctx, s.Store, entry.WithField("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	app := &App{Settings: s, Logger: logger, Bus: events.NewBus(), st: st}
	opts := []service.Option{
		service.WithLogger(entry.WithField("component", "service")),
		service.WithBus(app.Bus),
		service.WithConfig(service.Config{MaxFolderDepth: s.MaxFolderDepth, SaveDelay: s.SaveDelay}),
	}
	if s.SearchEnabled {
		if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
			st.Close()
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		idx, err := search.NewIndex(filepath.Join(s.DataDir, "index.db"))
		if err != nil {
			logger.WithError(err).Warn("Search index unavailable, falling back to title search")
		} else {
			app.idx = idx
			opts = append(opts, service.WithIndex(idx))
		}
	}

	app.Service, err = service.New(ctx, st, opts...)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	return app, nil
}

// Close flushes pending changes and releases everything Open acquired.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.Service != nil {
		err = a.Service.Close(ctx)
	}
	a.Bus.Close()
	a.closeResources()
	return err
}

func (a *App) closeResources() {
	if a.idx != nil {
		a.idx.Close()
	}
	if err := a.st.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close store")
	}
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/notes/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output, including change events")
}
