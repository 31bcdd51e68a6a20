// Command consolectl drives the voice console from a terminal, sharing the
// server's session store and backend client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	sessionFlag string
	outputFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "consolectl",
	Short:         "Operate the voice console from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", os.Getenv("CONSOLE_SESSION"), "console session id (defaults to $CONSOLE_SESSION, or the only stored session)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, tenantsCmd, usersCmd, contactsCmd, campaignCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		closeApp()
		os.Exit(1)
	}
}
