// Package cli implements the gophauth command-line client on top of cobra.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
)

// ClientFactory builds the API client once flags have been parsed.
type ClientFactory func(serverURL string, timeout time.Duration) client.Client

// DefaultClientFactory returns an HTTP client.
func DefaultClientFactory(serverURL string, timeout time.Duration) client.Client {
	return client.NewHTTPClient(serverURL, timeout)
}

type App struct {
	cfg       *config.Config
	newClient ClientFactory
	client    client.Client
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(cfg *config.Config, newClient ClientFactory, in io.Reader, out io.Writer) *App {
	return &App{cfg: cfg, newClient: newClient, reader: bufio.NewReader(in), out: out}
}

// RootCmd assembles the command tree.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gophauth",
		Short:         "gophauth CLI - register, log in and manage roles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.client = a.newClient(a.cfg.ServerURL, a.cfg.Timeout)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.PersistentFlags().StringVar(&a.cfg.ServerURL, "server", a.cfg.ServerURL, "gophauth API base URL (also GOPHAUTH_SERVER)")
	root.PersistentFlags().DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "request timeout (also GOPHAUTH_TIMEOUT)")

	root.AddCommand(a.registerCmd(), a.loginCmd(), a.addRoleCmd(), a.meCmd())
	return root
}

// Execute runs the command tree with args and returns the error to report.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) registerCmd() *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.UserName, err = valueOrPrompt(a.reader, a.out, req.UserName, "Enter username"); err != nil {
				return err
			}
			if req.Email, err = valueOrPrompt(a.reader, a.out, req.Email, "Enter email"); err != nil {
				return err
			}
			if req.FirstName, err = valueOrPrompt(a.reader, a.out, req.FirstName, "Enter first name"); err != nil {
				return err
			}
			if req.LastName, err = valueOrPrompt(a.reader, a.out, req.LastName, "Enter last name"); err != nil {
				return err
			}

			pw, err := GetPassword(a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			req.Password = string(pw)

			res, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.UserName, "username", "", "user name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var (
		email     string
		tokenOnly bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange email and password for a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = valueOrPrompt(a.reader, a.out, email, "Enter email"); err != nil {
				return err
			}

			pw, err := GetPassword(a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			res, err := a.client.Login(cmd.Context(), models.LoginRequest{Email: email, Password: string(pw)})
			if err != nil {
				return err
			}
			if tokenOnly {
				fmt.Fprintln(a.out, res.Token)
				return nil
			}
			a.printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&tokenOnly, "token-only", false, "print only the token")
	return cmd
}

func (a *App) addRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addrole <user-id> <role>",
		Short: "Add a user to a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.AddRole(cmd.Context(), models.AddRoleRequest{UserID: args[0], Role: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s to role %s\n", args[0], args[1])
			return nil
		},
	}
}

func (a *App) meCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the claims of a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = a.cfg.Token
			}
			if token == "" {
				return fmt.Errorf("no token: pass --token or set GOPHAUTH_TOKEN")
			}

			id, err := a.client.Me(cmd.Context(), token)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Issuer:   %s\n", id.Issuer)
			fmt.Fprintf(a.out, "Audience: %s\n", strings.Join(id.Audience, ", "))
			fmt.Fprintf(a.out, "Issued:   %s\n", id.IssuedAt.Format(time.RFC3339))
			fmt.Fprintf(a.out, "Expires:  %s\n", id.ExpiresAt.Format(time.RFC3339))
			for _, c := range id.Claims {
				fmt.Fprintf(a.out, "  %s = %s\n", c.Type, c.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (also GOPHAUTH_TOKEN)")
	return cmd
}

func (a *App) printResult(res *models.AuthResult) {
	fmt.Fprintf(a.out, "User:    %s <%s>\n", res.UserName, res.Email)
	fmt.Fprintf(a.out, "Roles:   %s\n", strings.Join(res.Roles, ", "))
	if res.ExpiresAt != nil {
		fmt.Fprintf(a.out, "Expires: %s\n", res.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Fprintf(a.out, "Token:   %s\n", res.Token)
}
