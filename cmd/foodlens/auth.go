package foodlens

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/router"
	"github.com/wisdomie/foodlens/internal/session"
)

var (
	authUsername string
	authPassword string
	authConfirm  string
)

var loginCmd = &cobra.Command{
	Use:         "login",
	Short:       "Sign in to the food recognition service",
	Annotations: routeAnnotation(router.Login),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			username, password, err := credentials(cmd, false)
			if err != nil {
				return err
			}
			if err := session.ValidateLogin(username, password); err != nil {
				return err
			}
			if err := a.Session.Login(commandContext(cmd), username, password); err != nil {
				return userError(err, "Login failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", a.Session.Snapshot().User.Username)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create an account and sign in",
	Annotations: routeAnnotation(router.Login),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			username, password, err := credentials(cmd, true)
			if err != nil {
				return err
			}
			if err := session.ValidateRegistration(username, password, authConfirm); err != nil {
				return err
			}
			if err := a.Session.Register(commandContext(cmd), username, password); err != nil {
				return userError(err, "Registration failed")
			}
			user := a.Session.Snapshot().User
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", user.Username)
			if user.Profile == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Set your goals with `foodlens profile set` for personalized advice.")
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			a.Session.Logout(commandContext(cmd))
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in user",
	Annotations: routeAnnotation(router.Profile),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			user := a.Session.Snapshot().User
			if jsonOutput {
				return jsonOut(cmd, user)
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.Username)
			return nil
		})
	},
}

// credentials fills in whatever the flags left out by prompting.
func credentials(cmd *cobra.Command, confirm bool) (string, string, error) {
	p := newPrompter(cmd)
	username, password := authUsername, authPassword
	var err error
	if username == "" {
		if username, err = p.ask("Username"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.askSecret("Password"); err != nil {
			return "", "", err
		}
		if confirm && authConfirm == "" {
			if authConfirm, err = p.askSecret("Confirm password"); err != nil {
				return "", "", err
			}
		}
	}
	if confirm && authConfirm == "" {
		authConfirm = password
	}
	return username, password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&authConfirm, "confirm", "", "Password confirmation (defaults to --password)")
	addJSONFlag(whoamiCmd)
}
