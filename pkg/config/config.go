// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the gateway.
const EnvPrefix = "CROSSENV"

const (
	KeyListenAddr         = "listen-addr"
	KeyFromURL            = "from-url"
	KeyToURL              = "to-url"
	KeyStaticDir          = "static-dir"
	KeyIndexFile          = "index-file"
	KeyServerName         = "server-name"
	KeyLogLevel           = "log-level"
	KeyLogFormat          = "log-format"
	KeyRequestTimeout     = "request-timeout"
	KeyInsecureSkipVerify = "insecure-skip-verify"
	KeyMaxBodyBytes       = "max-body-bytes"
	KeyMetrics            = "metrics"
	KeyReadTimeout        = "read-timeout"
	KeyWriteTimeout       = "write-timeout"
	KeyIdleTimeout        = "idle-timeout"
	KeyShutdownTimeout    = "shutdown-timeout"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config captures runtime settings for the gateway.
type Config struct {
	ListenAddr         string
	FromURL            string
	ToURL              string
	StaticDir          string
	IndexFile          string
	ServerName         string
	LogLevel           string
	LogFormat          string
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
	MaxBodyBytes       int64
	Metrics            bool
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddr:      "localhost:54321",
		FromURL:         "https://api.ignatius.io",
		ToURL:           "https://devapi.ignatius.io",
		StaticDir:       ".",
		IndexFile:       "cross-env.html",
		ServerName:      "Table Form Duplicator",
		LogLevel:        "info",
		LogFormat:       LogFormatJSON,
		MaxBodyBytes:    50 << 20,
		Metrics:         true,
		ReadTimeout:     30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// AddFlags registers one flag per configuration key, defaulting to Default().
func AddFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.String(KeyListenAddr, d.ListenAddr, "address the gateway listens on")
	fs.String(KeyFromURL, d.FromURL, `default base URL of the "from" (source) API`)
	fs.String(KeyToURL, d.ToURL, `default base URL of the "to" (destination) API`)
	fs.String(KeyStaticDir, d.StaticDir, "directory served for the UI page and its assets, empty disables static serving")
	fs.String(KeyIndexFile, d.IndexFile, "file in the static directory served at /")
	fs.String(KeyServerName, d.ServerName, "name reported by the health endpoint")
	fs.String(KeyLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.String(KeyLogFormat, d.LogFormat, "log format (json, console)")
	fs.Duration(KeyRequestTimeout, d.RequestTimeout, "upstream request timeout, 0 means no timeout")
	fs.Bool(KeyInsecureSkipVerify, d.InsecureSkipVerify, "skip TLS verification of upstream certificates")
	fs.Int64(KeyMaxBodyBytes, d.MaxBodyBytes, "maximum accepted request body size in bytes")
	fs.Bool(KeyMetrics, d.Metrics, "expose Prometheus metrics on /metrics")
	fs.Duration(KeyReadTimeout, d.ReadTimeout, "server read timeout")
	fs.Duration(KeyWriteTimeout, d.WriteTimeout, "server write timeout, 0 means no timeout")
	fs.Duration(KeyIdleTimeout, d.IdleTimeout, "server keep-alive idle timeout")
	fs.Duration(KeyShutdownTimeout, d.ShutdownTimeout, "graceful shutdown timeout")
}

// DescribeEnv appends the environment variable name to the usage string of each flag.
func DescribeEnv(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		f.Usage += fmt.Sprintf(" (env %s)", EnvName(f.Name))
	})
}

// EnvName returns the environment variable bound to a flag.
func EnvName(flagName string) string {
	name := strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
	return EnvPrefix + "_" + name
}

// NewViper binds fs to the CROSSENV_* environment and, when configFile is set,
// to a config file. Precedence is flags, env, config file, defaults.
func NewViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

// Load reads the effective configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		ListenAddr:         strings.TrimSpace(v.GetString(KeyListenAddr)),
		FromURL:            strings.TrimSpace(v.GetString(KeyFromURL)),
		ToURL:              strings.TrimSpace(v.GetString(KeyToURL)),
		StaticDir:          strings.TrimSpace(v.GetString(KeyStaticDir)),
		IndexFile:          strings.TrimSpace(v.GetString(KeyIndexFile)),
		ServerName:         v.GetString(KeyServerName),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		RequestTimeout:     v.GetDuration(KeyRequestTimeout),
		InsecureSkipVerify: v.GetBool(KeyInsecureSkipVerify),
		MaxBodyBytes:       v.GetInt64(KeyMaxBodyBytes),
		Metrics:            v.GetBool(KeyMetrics),
		ReadTimeout:        v.GetDuration(KeyReadTimeout),
		WriteTimeout:       v.GetDuration(KeyWriteTimeout),
		IdleTimeout:        v.GetDuration(KeyIdleTimeout),
		ShutdownTimeout:    v.GetDuration(KeyShutdownTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the gateway cannot run with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen-addr is required")
	}
	if _, _, err := c.BaseURLs(); err != nil {
		return err
	}
	if c.StaticDir != "" && c.IndexFile == "" {
		return errors.New("index-file is required when static-dir is set")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level %q: %w", c.LogLevel, err)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("invalid log-format %q, must be %s or %s", c.LogFormat, LogFormatJSON, LogFormatConsole)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max-body-bytes must be positive")
	}
	for key, d := range map[string]time.Duration{
		KeyRequestTimeout:  c.RequestTimeout,
		KeyReadTimeout:     c.ReadTimeout,
		KeyWriteTimeout:    c.WriteTimeout,
		KeyIdleTimeout:     c.IdleTimeout,
		KeyShutdownTimeout: c.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}

// BaseURLs parses the default upstream base URLs.
func (c Config) BaseURLs() (from, to *url.URL, err error) {
	if from, err = parseBaseURL(KeyFromURL, c.FromURL); err != nil {
		return nil, nil, err
	}
	if to, err = parseBaseURL(KeyToURL, c.ToURL); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseBaseURL(key, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%s must be absolute (scheme://host)", key)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s must use http or https, got %q", key, u.Scheme)
	}
	return u, nil
}
