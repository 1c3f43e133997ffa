package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/authflow"
	"github.com/threateye/threateye-cli/internal/errors"
)

// The non-TUI commands drive the same Begin/Apply protocol the dashboard
// uses, just synchronously: session mutation stays inside the flow.

// loginCmd authenticates against the platform and persists the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to ThreatEye",
	Long: `Log in to ThreatEye with your email and password.

On success the session is saved locally so other commands can use it.
If your email is not verified yet, you will be asked to run
'threateye verify' with the code sent to your inbox.

Examples:
  threateye login --email user@example.com --password mypass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if password == "" {
			return fmt.Errorf("--password is required")
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		if sess := app.store.Current(); sess.Valid() {
			fmt.Printf("Already logged in as %s. Run 'threateye logout' first.\n", sess.User.Email)
			return nil
		}

		gen, ok := app.flow.BeginLogin()
		if !ok {
			return errors.New(errors.ErrCodeAuthLoginFailed, "a login is already in progress")
		}

		fmt.Printf("Logging in as: %s\n", email)

		result, loginErr := app.client.Login(cmd.Context(), email, password)
		app.flow.ApplyLogin(gen, result, loginErr)
		if loginErr != nil {
			return loginErr
		}

		switch app.flow.State() {
		case authflow.StateVerificationPending:
			fmt.Println("Login successful, but your email is not verified.")
			fmt.Printf("A %d-digit code was sent to %s.\n", authflow.CodeLength, result.User.Email)
			fmt.Println("Run 'threateye verify <code>' to finish signing in.")
			return nil
		case authflow.StateAuthenticated:
			fmt.Printf("Login successful! Welcome, %s.\n", result.User.DisplayName())
			return nil
		default:
			return errors.New(errors.ErrCodeSessionPersist, "could not save your session")
		}
	},
}

// logoutCmd tears down the session through the flow
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and remove the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		sess := app.store.Current()
		if !sess.Valid() {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("Logging out: %s\n", sess.User.Email)
		app.flow.Logout()
		fmt.Println("Logged out successfully.")
		return nil
	},
}

// verifyCmd submits the email-verification code
var verifyCmd = &cobra.Command{
	Use:   "verify [code]",
	Short: "Verify your email address",
	Long: `Submit the verification code that was emailed to you after login.

The code has exactly ` + fmt.Sprint(authflow.CodeLength) + ` digits.

Examples:
  threateye verify 123456
  threateye verify --code 123456`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")
		if len(args) > 0 {
			code = args[0]
		}
		code = strings.TrimSpace(code)
		if len(code) != authflow.CodeLength || strings.Trim(code, "0123456789") != "" {
			return errors.NewCodeInvalidError(code)
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		sess, err := app.requireSession()
		if err != nil {
			return err
		}
		if sess.User.IsVerified {
			fmt.Println("Email already verified.")
			return nil
		}

		app.flow.SetCode(code)
		gen, email, code, ok := app.flow.BeginVerify()
		if !ok {
			return errors.NewCodeInvalidError(code)
		}

		verifyErr := app.client.VerifyEmail(cmd.Context(), email, code)
		app.flow.ApplyVerify(gen, verifyErr)
		if verifyErr != nil {
			return verifyErr
		}

		fmt.Println("Email verified successfully!")
		return nil
	},
}

// resendCmd requests a fresh verification code
var resendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Resend the email verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		sess, err := app.requireSession()
		if err != nil {
			return err
		}
		if sess.User.IsVerified {
			fmt.Println("Email already verified.")
			return nil
		}

		gen, email, ok := app.flow.BeginResend()
		if !ok {
			return errors.New(errors.ErrCodeAuthResendFailed, "a resend is already in progress")
		}

		resendErr := app.client.ResendVerification(cmd.Context(), email)
		app.flow.ApplyResend(gen, resendErr)
		if resendErr != nil {
			return resendErr
		}

		fmt.Printf("Verification code resent to %s. Check your email.\n", email)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Email address (required)")
	loginCmd.Flags().String("password", "", "Password (required)")
	verifyCmd.Flags().String("code", "", "Verification code")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(resendCmd)
}
