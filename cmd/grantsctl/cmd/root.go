package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.pilab.hu/grants/cmd/grantsctl/config"
	"go.pilab.hu/grants/log"
)

var (
	appLogger = log.Nop()
	verbose   bool
)

// NewRootCmd builds the command tree writing output to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "grantsctl lists and revokes the applications authorized on your account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				appLogger = log.NewZerologAdapter(zerolog.DebugLevel, true)
			}

			err := config.InitConfig()
			if err != nil {
				appLogger.Error(cmd.Context(), "Failed to initialize configuration", err)
			}
			return err
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "",
		fmt.Sprintf("config file (default is $HOME/.%s/config.yaml)", config.AppName))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newConfigCmd(), newAuthorizationsCmd())
	return rootCmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
