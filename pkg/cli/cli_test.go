// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	out, err := execute(t, context.Background(),
		"config",
		"--env-file", "",
		"--from-url", "http://localhost:9001",
		"--request-timeout", "2s",
	)
	if err != nil {
		t.Fatalf("config command: %v", err)
	}

	for _, want := range []string{
		"from-url: http://localhost:9001",
		"to-url: https://devapi.ignatius.io",
		"request-timeout: 2s",
		"listen-addr: localhost:54321",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommandReadsEnvFile(t *testing.T) {
	const key = "CROSSENV_TO_URL"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s already set in the environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), "gateway.env")
	if err := os.WriteFile(envFile, []byte(key+"=http://localhost:9002\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	out, err := execute(t, context.Background(), "config", "--env-file", envFile)
	if err != nil {
		t.Fatalf("config command: %v", err)
	}
	if !strings.Contains(out, "to-url: http://localhost:9002") {
		t.Fatalf("env file value not applied:\n%s", out)
	}
}

func TestMissingExplicitEnvFileFails(t *testing.T) {
	_, err := execute(t, context.Background(), "config", "--env-file", filepath.Join(t.TempDir(), "nope.env"))
	if err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}

func TestConfigCommandRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, context.Background(), "config", "--env-file", "", "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "log-level") {
		t.Fatalf("expected log-level validation error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "version")
	if err != nil {
		t.Fatalf("version command: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, ctx,
			"serve",
			"--env-file", "",
			"--listen-addr", "127.0.0.1:0",
			"--static-dir", "",
			"--metrics=false",
			"--log-level", "warn",
		)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after the context expired")
	}
}
