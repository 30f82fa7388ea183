package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Workers  WorkersConfig  `mapstructure:"workers"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the storage driver and its connection settings.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite or postgres
	Path     string `mapstructure:"path"`   // sqlite only
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// WorkersConfig sizes the background pool that persists submissions.
type WorkersConfig struct {
	Count      int           `mapstructure:"count"`
	QueueSize  int           `mapstructure:"queue_size"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// SeedConfig controls the demo data written into an empty database.
type SeedConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Jobs       int    `mapstructure:"jobs"`
	Candidates int    `mapstructure:"candidates"`
	Fixtures   string `mapstructure:"fixtures"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/talentflow.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "talentflow")
	v.SetDefault("database.password", "talentflow")
	v.SetDefault("database.dbname", "talentflow")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	v.SetDefault("workers.count", 4)
	v.SetDefault("workers.queue_size", 128)
	v.SetDefault("workers.retries", 3)
	v.SetDefault("workers.retry_delay", 500*time.Millisecond)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.jobs", 25)
	v.SetDefault("seed.candidates", 1000)
	v.SetDefault("seed.fixtures", "")
}

// Store holds the live configuration. Reads are safe while the file
// watcher swaps in a reloaded copy.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// Current returns a copy of the active configuration.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Store) set(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Load reads defaults, config/config.yaml under projectRoot and
// TALENTFLOW_* environment variables, in increasing precedence.
func Load(projectRoot string) (*Store, *viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TALENTFLOW") // e.g., TALENTFLOW_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	s := &Store{}
	s.set(cfg)
	return s, v, nil
}

// Watch hot-reloads the config file into s and hands each accepted copy to
// onChange. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, s *Store, log *zap.Logger, onChange ...func(Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Error("Rejected reloaded configuration", zap.Error(err))
			return
		}
		s.set(cfg)
		for _, fn := range onChange {
			fn(cfg)
		}
	})
	v.WatchConfig()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

// DSN builds the driver connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
	}
	return filepath.Clean(d.Path) +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}
