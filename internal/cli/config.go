package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/syssam/arrayrel/dialect"
)

const maxWalkDepth = 25

// Config represents the arrayrel configuration from arrayrel.yaml.
type Config struct {
	// Models is the path of the YAML models file.
	Models string `mapstructure:"models"`
	// EnableArrayM2M enables the array join strategies and the cascade
	// listener of the client.
	EnableArrayM2M bool `mapstructure:"enable_array_m2m"`

	Database DatabaseConfig `mapstructure:"database"`
	Prune    PruneConfig    `mapstructure:"prune"`
	Log      LogConfig      `mapstructure:"log"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is the database/sql driver name: postgres (lib/pq) or pgx.
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PruneConfig holds prune command settings.
type PruneConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// StatementTimeout bounds each scrubbing statement. Zero keeps the
	// server setting.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// SlowQuery is the duration after which a statement is logged as slow.
	SlowQuery time.Duration `mapstructure:"slow_query"`
}

// TraceConfig holds OpenTelemetry settings. Tracing is off when Endpoint
// is empty.
type TraceConfig struct {
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318.
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// LoadConfig discovers and loads configuration with the precedence
// env > config file > defaults. Flags are applied by the commands.
//
// It returns the loaded config and the path of the config file, empty if
// none was found.
func LoadConfig(explicitPath string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ARRAYREL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models", "models.yaml")
	v.SetDefault("enable_array_m2m", true)

	v.SetDefault("database.driver", dialect.Postgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")

	v.SetDefault("prune.concurrency", 4)
	v.SetDefault("prune.statement_timeout", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.slow_query", "200ms")

	v.SetDefault("trace.endpoint", "")
	v.SetDefault("trace.service_name", "arrayrel")
}

// findConfigFile returns the config file to use. An explicit path must
// exist. Otherwise it walks up from the working directory looking for
// arrayrel.yaml or arrayrel.yml, stopping at a .git entry or after
// maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	dir := cwd
	for range maxWalkDepth {
		for _, name := range []string{"arrayrel.yaml", "arrayrel.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// DSN returns the database connection string. database.url wins over the
// discrete fields.
func (c *Config) DSN() (string, error) {
	db := c.Database
	if db.URL != "" {
		return db.URL, nil
	}
	if db.Host == "" {
		return "", fmt.Errorf("database.host is required when database.url is not set")
	}
	if db.Name == "" {
		return "", fmt.Errorf("database.name is required when database.url is not set")
	}
	if db.User == "" {
		return "", fmt.Errorf("database.user is required when database.url is not set")
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// DriverName returns the database/sql driver to open.
func (c *Config) DriverName() (string, error) {
	switch d := c.Database.Driver; d {
	case "", dialect.Postgres:
		return dialect.Postgres, nil
	case dialect.PGX:
		return dialect.PGX, nil
	default:
		return "", fmt.Errorf("unsupported database.driver %q (want %s or %s)", d, dialect.Postgres, dialect.PGX)
	}
}
