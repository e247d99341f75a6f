package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with a username and password. The session cookie is stored
in the config directory so later commands and the terminal UI resume it.
Prompts are skipped when TRANSPO_USERNAME and TRANSPO_PASSWORD are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := promptCredentials(a.cfg.Username, a.cfg.Password)
			if err != nil {
				return err
			}
			s, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.Username, roleName(s.Role))
			if s.AssignedBusNumber != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned bus: %s\n", s.AssignedBusNumber)
			}
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func promptCredentials(username string, password string) (string, string, error) {
	if username == "" {
		prompt := promptui.Prompt{
			Label:    "Username",
			Validate: requireValue("username"),
		}
		value, err := prompt.Run()
		if err != nil {
			return "", "", promptError(err)
		}
		username = strings.TrimSpace(value)
	}
	if password == "" {
		prompt := promptui.Prompt{
			Label:    "Password",
			Mask:     '*',
			Validate: requireValue("password"),
		}
		value, err := prompt.Run()
		if err != nil {
			return "", "", promptError(err)
		}
		password = value
	}
	return username, password, nil
}

func requireValue(name string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errors.New("cancelled")
	}
	return err
}
