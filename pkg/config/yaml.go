// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration marshals to a Go duration string such as "30s" in YAML.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// document is the YAML layout of Config. Its keys match the flag names, so the
// output of YAML can be fed back through --config-file.
type document struct {
	ListenAddr         string   `yaml:"listen-addr"`
	FromURL            string   `yaml:"from-url"`
	ToURL              string   `yaml:"to-url"`
	StaticDir          string   `yaml:"static-dir"`
	IndexFile          string   `yaml:"index-file"`
	ServerName         string   `yaml:"server-name"`
	LogLevel           string   `yaml:"log-level"`
	LogFormat          string   `yaml:"log-format"`
	RequestTimeout     Duration `yaml:"request-timeout"`
	InsecureSkipVerify bool     `yaml:"insecure-skip-verify"`
	MaxBodyBytes       int64    `yaml:"max-body-bytes"`
	Metrics            bool     `yaml:"metrics"`
	ReadTimeout        Duration `yaml:"read-timeout"`
	WriteTimeout       Duration `yaml:"write-timeout"`
	IdleTimeout        Duration `yaml:"idle-timeout"`
	ShutdownTimeout    Duration `yaml:"shutdown-timeout"`
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	doc := document{
		ListenAddr:         c.ListenAddr,
		FromURL:            c.FromURL,
		ToURL:              c.ToURL,
		StaticDir:          c.StaticDir,
		IndexFile:          c.IndexFile,
		ServerName:         c.ServerName,
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
		RequestTimeout:     Duration(c.RequestTimeout),
		InsecureSkipVerify: c.InsecureSkipVerify,
		MaxBodyBytes:       c.MaxBodyBytes,
		Metrics:            c.Metrics,
		ReadTimeout:        Duration(c.ReadTimeout),
		WriteTimeout:       Duration(c.WriteTimeout),
		IdleTimeout:        Duration(c.IdleTimeout),
		ShutdownTimeout:    Duration(c.ShutdownTimeout),
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
