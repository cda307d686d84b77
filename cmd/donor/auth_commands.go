package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matrixvert/donorcli/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your donor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.CanSubmit() {
				return fmt.Errorf("too many attempts, retry in %ds", a.auth.CooldownRemaining())
			}

			err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				var rateErr *auth.RateLimitedError
				if errors.As(err, &rateErr) {
					return fmt.Errorf("%s (login disabled until the cooldown ends)", a.auth.Err())
				}
				if msg := a.auth.Err(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			fmt.Println("Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var name, email, password string
	var acceptTerms bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a donor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Signup(cmd.Context(), name, email, password, acceptTerms); err != nil {
				if msg := a.auth.Err(); msg != "" {
					return errors.New(msg)
				}
				return err
			}
			fmt.Println("Account created, you are logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&acceptTerms, "accept-terms", false, "accept the terms of use and privacy policy")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("Are you sure you want to log out?") {
				fmt.Println("Cancelled.")
				return nil
			}
			a.auth.Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in donor profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.IsAuthenticated() {
				return errors.New("not logged in")
			}
			donor, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>\n", donor.Name, donor.Email)
			return nil
		},
	}
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
