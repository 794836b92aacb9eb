// Package cli implements the formctl command tree: account management,
// record submission, listing, deletion, and PDF export against a
// formkeeper server.
package cli

import (
	"github.com/spf13/cobra"

	"formkeeper/pkg/client"
	"formkeeper/pkg/workflow"
)

var version = "dev"

// env carries the wired client-side stack shared by all subcommands.
type env struct {
	client   *client.Client
	sessions *workflow.Manager
	flow     *workflow.Workflow
}

// NewRootCmd builds the formctl command tree.
func NewRootCmd() *cobra.Command {
	var serverURL string
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "formctl",
		Short: "CLI for the formkeeper record service",
		Long: `formctl manages records against a formkeeper server: sign up and in,
submit text records with optional image attachments, list and delete
them, and export a record to PDF.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.client = client.New(serverURL)
			e.sessions = workflow.NewManager(e.client)
			e.flow = workflow.New(e.sessions, e.client, e.client)
			if s, ok := loadSession(); ok {
				e.sessions.Restore(s)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "formkeeper server URL")

	rootCmd.AddCommand(newSignupCmd(e))
	rootCmd.AddCommand(newConfirmCmd(e))
	rootCmd.AddCommand(newLoginCmd(e))
	rootCmd.AddCommand(newLogoutCmd(e))
	rootCmd.AddCommand(newResetRequestCmd(e))
	rootCmd.AddCommand(newResetCompleteCmd(e))
	rootCmd.AddCommand(newSubmitCmd(e))
	rootCmd.AddCommand(newListCmd(e))
	rootCmd.AddCommand(newDeleteCmd(e))
	rootCmd.AddCommand(newExportCmd(e))
	rootCmd.AddCommand(newExportAllCmd(e))

	return rootCmd
}
