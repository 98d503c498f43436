package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.pilab.hu/grants/authlist"
	"go.pilab.hu/grants/cmd/grantsctl/client"
	"go.pilab.hu/grants/cmd/grantsctl/config"
	"go.pilab.hu/grants/log"
	"gopkg.in/yaml.v3"
)

func newAuthorizationsCmd() *cobra.Command {
	var output string

	authorizationsCmd := &cobra.Command{
		Use:     "authorizations",
		Short:   "List and revoke authorized applications",
		Aliases: []string{"authz", "grants"},
	}
	authorizationsCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the applications authorized on your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := mountList(cmd)
			if err != nil {
				return err
			}
			defer list.Close()

			state := list.State()
			if state.LoadErr != nil {
				return fmt.Errorf("failed to list authorizations: %w", state.LoadErr)
			}
			return printRecords(cmd.OutOrStdout(), output, state.Authorizations)
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke CLIENT_ID",
		Short: "Revoke an application's access to your account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]

			list, err := mountList(cmd)
			if err != nil {
				return err
			}
			defer list.Close()

			if err := list.State().LoadErr; err != nil {
				return fmt.Errorf("failed to list authorizations: %w", err)
			}

			list.Revoke(clientID)
			list.Wait()

			state := list.State()
			if err := state.RevokeErr(clientID); err != nil {
				return fmt.Errorf("failed to revoke %s: %w", clientID, err)
			}
			appLogger.Debug(cmd.Context(), "Authorization revoked", log.Fields{"client_id": clientID})

			fmt.Fprintf(cmd.OutOrStdout(), "Authorization for %q revoked.\n", clientID)
			return printRecords(cmd.OutOrStdout(), output, state.Authorizations)
		},
	}

	authorizationsCmd.AddCommand(listCmd, revokeCmd)
	return authorizationsCmd
}

// mountList loads the current context's authorizations.
func mountList(cmd *cobra.Command) (*authlist.List, error) {
	currentCtx, err := config.GetCurrentContext()
	if err != nil {
		return nil, err
	}
	gw, err := client.AuthorizationsGateway(currentCtx)
	if err != nil {
		return nil, err
	}

	appLogger.Debug(cmd.Context(), "Loading authorizations", log.Fields{"endpoint": currentCtx.ServerEndpoint})

	list := authlist.NewList(gw)
	list.Mount(cmd.Context())
	list.Wait()
	return list, nil
}

func printRecords(out io.Writer, format string, records []authlist.Record) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal authorizations to YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "table", "":
		if len(records) == 0 {
			fmt.Fprintln(out, "No authorized applications.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CLIENT ID\tNAME\tISSUED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ClientID, r.ClientName, r.Issued)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
