// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package cli holds the cobra commands of the crossenv-gateway binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/go-core-stack/crossenv-gateway/pkg/config"
	"github.com/go-core-stack/crossenv-gateway/pkg/server"
)

const (
	flagConfigFile = "config-file"
	flagEnvFile    = "env-file"
	defaultEnvFile = ".env"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// NewCommand returns the root command. Without a subcommand it serves the gateway.
func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "crossenv-gateway",
		Short: "Local CORS gateway forwarding browser calls to a source and a destination API",
		Long: "crossenv-gateway forwards /proxy/from/* and /proxy/to/* to two upstream APIs,\n" +
			"injecting bearer tokens from x-token-from / x-token-to and allowing any origin.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(cmd)
		},
		RunE: runServe,
	}

	flags := root.PersistentFlags()
	config.AddFlags(flags)
	config.DescribeEnv(flags)
	flags.String(flagConfigFile, "", "YAML config file, overridden by env and flags")
	flags.String(flagEnvFile, defaultEnvFile, "dotenv file loaded before reading the environment, ignored when missing")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the gateway (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE:  runConfig,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
				return err
			},
		},
	)

	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	gateway, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("construct gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return gateway.ListenAndServe(ctx)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configFile, err := cmd.Flags().GetString(flagConfigFile)
	if err != nil {
		return config.Config{}, err
	}

	v, err := config.NewViper(cmd.Flags(), configFile)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// loadEnvFile loads the dotenv file without overriding variables that are
// already set. A missing default file is not an error.
func loadEnvFile(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil || path == "" {
		return err
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed(flagEnvFile) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
