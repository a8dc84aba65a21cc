package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tick/internal/cli"
	"tick/internal/commands"
	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
	"tick/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// isolate points the default config directory at a temp dir and clears
// settings overrides from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, k := range []string{"TICK_BACKEND", "TICK_API_URL", "TICK_WS_URL", "TICK_TIMEZONE", "TICK_CACHE", "TICK_REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return filepath.Join(xdg, config.AppName)
}

func run(t *testing.T, factory cli.ServiceFactory, args ...string) (int, string, string) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, testFactory(testutil.NewFakeService()), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, testFactory(testutil.NewFakeService()), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, testFactory(testutil.NewFakeService()), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, testFactory(testutil.NewFakeService()), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tick 0.1.0\n" {
		t.Errorf("expected 'tick 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"help", "--unknown"}, "error: unknown flag: -unknown\n"},
		{"missing value", []string{"add", "--list"}, "error: flag needs an argument: -list\n"},
		{"missing config value", []string{"today", "--config"}, "error: flag needs an argument: -config\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, testFactory(testutil.NewFakeService()), tt.args...)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestDispatcher_NoArgsRunsToday(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, testFactory(testutil.NewFakeService()))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "Today") {
		t.Errorf("expected today view title, got %q", stdout)
	}
	if !strings.Contains(stdout, "no tasks found") {
		t.Errorf("expected empty view message, got %q", stdout)
	}
}

func TestDispatcher_QuietFlag(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	svc.AddList(1, "Inbox")
	code, stdout, stderr := run(t, testFactory(svc), "createlist", "--quiet", "Work")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected no output with --quiet, got %q", stdout)
	}
}

func TestDispatcher_ConfigFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: nope\n"), 0600); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, testFactory(testutil.NewFakeService()), "today", "--config", dir)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend must be") {
		t.Errorf("expected settings validation error, got %q", stderr)
	}
}

func TestDispatcher_MalformedSettings(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [\n"), 0600); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, testFactory(testutil.NewFakeService()), "today")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: reading ") {
		t.Errorf("expected read error, got %q", stderr)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{"unauthorized", service.ErrUnauthorized, exitcode.AuthError, "error: not logged in (run: tick login)\n"},
		{"wrapped unauthorized", errors.Join(errors.New("no session"), service.ErrUnauthorized), exitcode.AuthError, "error: not logged in (run: tick login)\n"},
		{"other", errors.New("dial tcp: refused"), exitcode.BackendError, "error: backend error: dial tcp: refused\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
				return nil, tt.err
			}
			code, _, stderr := run(t, factory, "today")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestDispatcher_FactoryNotCalledWithoutAuth(t *testing.T) {
	isolate(t)
	called := false
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		called = true
		return nil, service.ErrUnauthorized
	}

	code, _, _ := run(t, factory, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if called {
		t.Error("factory called for a command without auth")
	}
}

func TestDispatcher_NoFactoryPreflight(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, nil, "today")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tick login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_CommonFlagsReachConfig(t *testing.T) {
	isolate(t)
	var got *config.Config
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		got = cfg
		return testutil.NewFakeService(), nil
	}

	run(t, factory, "today", "--offline", "--debug", "--quiet")

	if got == nil {
		t.Fatal("factory not called")
	}
	if !got.Offline || !got.Debug || !got.Quiet {
		t.Errorf("flags not applied: offline=%v debug=%v quiet=%v", got.Offline, got.Debug, got.Quiet)
	}
	if got.Logger == nil {
		t.Error("logger not set")
	}
}
