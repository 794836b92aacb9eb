package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSignupCmd(e *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long: `Register a new account. The account stays pending until the emailed
confirmation token is redeemed with "formctl confirm".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := e.sessions.SignUp(email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Account created for %s.\n", pending.Email)
			fmt.Fprintf(os.Stdout, "Confirmation token: %s\n", pending.ConfirmationToken)
			fmt.Fprintln(os.Stdout, `Run "formctl confirm --token <token>" to activate it.`)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Account password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newConfirmCmd(e *env) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a pending account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.sessions.Confirm(token); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Email confirmed. You can sign in now.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Confirmation token from signup")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := e.sessions.SignIn(email, password)
			if err != nil {
				return err
			}
			if err := saveSession(session); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Signed in as %s.\n", session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.sessions.SignOut(); err != nil {
				// local state is already cleared; report but continue
				fmt.Fprintf(os.Stderr, "remote sign-out failed: %v\n", err)
			}
			if err := clearSession(); err != nil {
				return fmt.Errorf("clear persisted session: %w", err)
			}
			fmt.Fprintln(os.Stdout, "Signed out.")
			return nil
		},
	}
}

func newResetRequestCmd(e *env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-request",
		Short: "Request a password recovery token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.sessions.RequestPasswordReset(email); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "If an account exists for that email, a recovery message has been sent.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newResetCompleteCmd(e *env) *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset-complete",
		Short: "Set a new password with a recovery token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.sessions.CompletePasswordReset(token, password); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Password changed. You can sign in now.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Recovery token")
	cmd.Flags().StringVar(&password, "new-password", "", "New password (min 8 characters)")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("new-password")

	return cmd
}
