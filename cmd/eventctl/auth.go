package main

import (
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	var username, password string
	credentialFlags := func(c *cobra.Command) {
		c.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
		c.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
		_ = c.MarkFlagRequired("username")
		_ = c.MarkFlagRequired("password")
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(newClient(apiFlag, ""), "/api/auth/register", username, password, cmd.OutOrStdout())
		},
	}
	credentialFlags(registerCmd)

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the session token (export it as EVENTCTL_TOKEN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(newClient(apiFlag, ""), "/api/auth/login", username, password, cmd.OutOrStdout())
		},
	}
	credentialFlags(loginCmd)

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the user for the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(newClient(apiFlag, tokenFlag).R(), resty.MethodGet, "/api/auth/me")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Body())
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(newClient(apiFlag, tokenFlag).R(), resty.MethodPost, "/api/auth/logout")
			return err
		},
	}

	rootCmd.AddCommand(registerCmd, loginCmd, meCmd, logoutCmd)
}

// runAuth posts credentials to path and prints the session token the server
// set as a cookie.
func runAuth(c *resty.Client, path, username, password string, out io.Writer) error {
	resp, err := call(c.R().SetBody(map[string]string{"username": username, "password": password}), resty.MethodPost, path)
	if err != nil {
		return err
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie && ck.Value != "" {
			_, err := fmt.Fprintln(out, ck.Value)
			return err
		}
	}
	return fmt.Errorf("server did not return a session")
}
