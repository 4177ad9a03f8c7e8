package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/session"
)

func (c *cli) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the API token",
		Long: `Sign in with an email and password.

The password is read without echo from a terminal, or as the first line of
standard input when it is piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(c.in)

			if email == "" {
				fmt.Fprint(c.out, "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}
			password, err := c.readPassword(reader)
			if err != nil {
				return err
			}

			in := domain.Credentials{Email: email, Password: password}
			if err := checkInput(in); err != nil {
				return err
			}

			old, _ := loadCredentials(c.credsPath)
			baseURL := c.baseURL(old)
			client, err := api.New(api.Options{BaseURL: baseURL, Timeout: requestTimeout})
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := client.Auth().Login(ctx, in)
			if domain.IsUnauthorized(err) {
				return errors.New("login failed: invalid email or password")
			}
			if err != nil {
				return fmt.Errorf("login failed: %s", domain.UserMessage(err, "could not reach the API"))
			}

			creds := &credentials{
				APIURL: baseURL,
				Token:  res.Token,
				User: savedUser{
					ID:    res.User.ID,
					Email: res.User.Email,
					Name:  res.User.FullName(),
					Role:  res.User.Role,
				},
			}
			if exp, ok := session.TokenExpiry(res.Token); ok {
				creds.ExpiresAt = exp
			}
			if err := saveCredentials(c.credsPath, creds); err != nil {
				return err
			}
			c.success("Signed in as %s (%s)", creds.User.Email, creds.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from reader.
func (c *cli) readPassword(reader *bufio.Reader) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("read password: no input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := removeCredentials(c.credsPath); err != nil {
				return err
			}
			c.success("Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			creds, err := loadCredentials(c.credsPath)
			if err != nil {
				return err
			}
			if creds == nil || creds.Token == "" {
				return errors.New("not signed in")
			}
			if c.output == outputYAML {
				return writeYAML(c.out, creds.User)
			}
			fmt.Fprintf(c.out, "%s <%s>\nRole: %s\nAPI:  %s\n", creds.User.Name, creds.User.Email, creds.User.Role, c.baseURL(creds))
			if !creds.ExpiresAt.IsZero() {
				state := "valid until"
				if creds.expired(nowFunc()) {
					state = "expired at"
				}
				fmt.Fprintf(c.out, "Token %s %s\n", state, creds.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
