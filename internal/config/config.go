// Package config loads lngraph settings from flags, the environment, .env
// and an optional lngraph.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. LNGRAPH_LND_ADDRESS.
const EnvPrefix = "LNGRAPH"

type Config struct {
	LND     LND     `mapstructure:"lnd"`
	HTTP    HTTP    `mapstructure:"http"`
	Metrics Metrics `mapstructure:"metrics"`
	Otel    Otel    `mapstructure:"otel"`
	Log     Log     `mapstructure:"log"`
}

type LND struct {
	Address      string        `mapstructure:"address"`
	Cert         string        `mapstructure:"cert"`
	Macaroon     string        `mapstructure:"macaroon"`
	RPCTimeout   time.Duration `mapstructure:"rpc_timeout"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
}

type HTTP struct {
	Listen          string        `mapstructure:"listen"`
	Endpoint        string        `mapstructure:"endpoint"`
	Playground      string        `mapstructure:"playground"`
	CORSOrigin      []string      `mapstructure:"cors_origin"`
	MetadataHeaders []string      `mapstructure:"metadata_headers"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Introspection   bool          `mapstructure:"introspection"`
	Pretty          bool          `mapstructure:"pretty"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type Metrics struct {
	// Listen is the address of the /metrics listener. Empty disables it.
	Listen string `mapstructure:"listen"`
}

type Otel struct {
	// Endpoint is the OTLP gRPC collector. Empty disables tracing.
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// LndDir returns lnd's data directory for goos.
func LndDir(goos, home string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Lnd")
	case "windows":
		return filepath.Join(home, "AppData", "Local", "Lnd")
	default:
		return filepath.Join(home, ".lnd")
	}
}

// SetDefaults registers every key with its default. Keys without a default
// are invisible to Unmarshal, so all of them are listed here.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	dir := LndDir(runtime.GOOS, home)

	v.SetDefault("lnd.address", "localhost:10009")
	v.SetDefault("lnd.cert", filepath.Join(dir, "tls.cert"))
	v.SetDefault("lnd.macaroon", filepath.Join(dir, "admin.macaroon"))
	v.SetDefault("lnd.rpc_timeout", 30*time.Second)
	v.SetDefault("lnd.ready_timeout", 10*time.Second)

	listen := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		listen = ":" + port
	}
	v.SetDefault("http.listen", listen)
	v.SetDefault("http.endpoint", "/graphql")
	v.SetDefault("http.playground", "/playground")
	v.SetDefault("http.cors_origin", []string{})
	v.SetDefault("http.metadata_headers", []string{})
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("http.introspection", true)
	v.SetDefault("http.pretty", false)
	v.SetDefault("http.max_body_bytes", int64(1<<20))

	v.SetDefault("metrics.listen", ":9090")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service", "lngraph")
	v.SetDefault("log.level", "info")
}

// Load reads .env, the environment and the config file into a Config. file
// names an explicit config file; when empty lngraph.yaml is looked up in the
// working directory and $HOME/.lngraph, and a missing one is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("lngraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.lngraph")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.LND.Address == "" {
		return errors.New("config: lnd.address is required")
	}
	for key, path := range map[string]string{"http.endpoint": c.HTTP.Endpoint, "http.playground": c.HTTP.Playground} {
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("config: %s must start with /, got %q", key, path)
		}
	}
	if c.HTTP.Endpoint == "" {
		return errors.New("config: http.endpoint is required")
	}
	if c.HTTP.Endpoint == c.HTTP.Playground {
		return fmt.Errorf("config: http.endpoint and http.playground are both %q", c.HTTP.Endpoint)
	}
	return nil
}
