package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.pilab.hu/grants/cmd/grantsctl/config"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage grantsctl configuration and contexts",
		Aliases: []string{"cfg"},
	}

	getContextsCmd := &cobra.Command{
		Use:     "get-contexts",
		Short:   "Display the configured contexts",
		Aliases: []string{"get"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(config.GlobalConfig.Contexts) == 0 {
				fmt.Fprintln(out, "No contexts defined.")
				return nil
			}

			// Tokens are not printed.
			redacted := make(map[string]config.Context, len(config.GlobalConfig.Contexts))
			for name, c := range config.GlobalConfig.Contexts {
				redacted[name] = config.Context{Name: c.Name, ServerEndpoint: c.ServerEndpoint}
			}
			data, err := yaml.Marshal(redacted)
			if err != nil {
				return fmt.Errorf("failed to marshal contexts to YAML: %w", err)
			}
			fmt.Fprint(out, string(data))
			fmt.Fprintf(out, "Current context: %s\n", config.GlobalConfig.CurrentContext)
			return nil
		},
	}

	useContextCmd := &cobra.Command{
		Use:     "use-context CONTEXT_NAME",
		Short:   "Sets the current context",
		Aliases: []string{"use"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.GlobalConfig.UseContext(args[0]); err != nil {
				return err
			}
			if err := config.SaveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q.\n", args[0])
			return nil
		},
	}

	setContextCmd := &cobra.Command{
		Use:     "set-context CONTEXT_NAME",
		Short:   "Creates or updates a context",
		Aliases: []string{"set"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, _ := cmd.Flags().GetString("endpoint")
			token, _ := cmd.Flags().GetString("token")

			if _, exists := config.GlobalConfig.Contexts[args[0]]; !exists && endpoint == "" {
				return errors.New("--endpoint flag is required for a new context")
			}

			config.GlobalConfig.SetContext(args[0], endpoint, token)
			if err := config.SaveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q created/modified.\n", args[0])
			return nil
		},
	}
	setContextCmd.Flags().String("endpoint", "", "Base URL of the SSO server, e.g. https://sso.example.com")
	setContextCmd.Flags().String("token", "", "Access token used for this context")

	currentContextCmd := &cobra.Command{
		Use:   "current-context",
		Short: "Displays the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.GlobalConfig.CurrentContext == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No current context is set.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.GlobalConfig.CurrentContext)
			return nil
		},
	}

	configCmd.AddCommand(getContextsCmd, useContextCmd, setContextCmd, currentContextCmd)
	return configCmd
}
