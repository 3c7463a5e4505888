package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/AntonAveryan/careermate/internal/errors"
)

func newRegisterCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, err := resolveCredentials(username, password)
			if err != nil {
				return err
			}
			if err := a.session.Register(cmd.Context(), username, password); err != nil {
				if apperrors.Is(err, apperrors.ErrCredentialConflict) {
					return fmt.Errorf("username %q already exists, choose another", username)
				}
				return err
			}
			fmt.Printf("Registered and signed in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, err := resolveCredentials(username, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the stored tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session.Logout(cmd.Context())
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if local {
				info, err := a.session.TokenInfo()
				if err != nil {
					if apperrors.Is(err, apperrors.ErrUnauthenticated) {
						fmt.Println("Not signed in")
						return nil
					}
					return err
				}
				fmt.Printf("Token subject: %s\n", info.Subject)
				if !info.ExpiresAt.IsZero() {
					fmt.Printf("Token expires: %s\n", info.ExpiresAt.Format(time.RFC3339))
				}
				return nil
			}

			ident, err := a.session.Identity(cmd.Context())
			if err != nil {
				if apperrors.Is(err, apperrors.ErrUnauthenticated) || apperrors.Is(err, apperrors.ErrSessionExpired) {
					fmt.Println("Not signed in")
					return nil
				}
				return err
			}
			fmt.Printf("Signed in as %s\n", ident.Username)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "decode the stored token instead of asking the backend")
	return cmd
}

// resolveCredentials falls back to an interactive prompt for whatever the
// flags didn't provide.
func resolveCredentials(username, password string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		password = strings.TrimSpace(line)
	}
	return username, password, nil
}
