package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"tick/internal/backend/googletasks"
	"tick/internal/backend/rest"
	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// PasswordReader prompts on w and returns the password typed.
type PasswordReader func(w io.Writer) (string, error)

// LoginCmd implements the login command. The REST backend signs in with
// email and password; the google backend runs the browser OAuth flow.
type LoginCmd struct {
	register bool
	email    string
	name     string
	readPass PasswordReader
}

// SetPasswordReader replaces the terminal password prompt (for testing).
func (c *LoginCmd) SetPasswordReader(fn PasswordReader) {
	c.readPass = fn
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string {
	return "tick login [--email <email>] [--register --name <name>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.register, "register", false, "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.name, "name", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if cfg.Settings.Backend == config.BackendGoogle {
		return c.loginGoogle(ctx, cfg, out, errOut)
	}
	return c.loginREST(ctx, cfg, out, errOut)
}

func (c *LoginCmd) loginREST(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprintln(errOut, "error: email required (use --email)")
		return exitcode.UserError
	}
	if c.register && strings.TrimSpace(c.name) == "" {
		fmt.Fprintln(errOut, "error: name required (use --name)")
		return exitcode.UserError
	}

	readPass := c.readPass
	if readPass == nil {
		readPass = promptPassword
	}
	password, err := readPass(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
		return exitcode.UserError
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	client := rest.New(rest.Options{
		BaseURL:     cfg.Settings.APIURL,
		SessionPath: cfg.SessionPath(),
		Timeout:     cfg.Settings.RequestTimeout,
		Logger:      cfg.Logger,
	})
	var user service.User
	if c.register {
		user, err = client.Register(ctx, strings.TrimSpace(c.name), email, password)
	} else {
		user, err = client.Login(ctx, email, password)
	}
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintln(errOut, "error: invalid email or password")
			return exitcode.AuthError
		}
		return reportErr(errOut, err)
	}
	newFetcher(cfg).Invalidate()

	if !cfg.Quiet {
		fmt.Fprint(out, "logged in as ")
		output.FormatUser(out, user)
	}
	return exitcode.Success
}

func (c *LoginCmd) loginGoogle(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	if cfg.HasCredentials() && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	err := googletasks.Login(ctx, cfg, errOut)
	if errors.Is(err, googletasks.ErrNoOAuthClient) {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintln(errOut, "Create a Desktop OAuth client with the Google Tasks API enabled at")
		fmt.Fprintln(errOut, "https://console.cloud.google.com/apis/credentials and save it as:")
		fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
		return exitcode.AuthError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	return ok(cfg, out)
}

// promptPassword reads without echo from a terminal, or one line from a
// piped stdin.
func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
