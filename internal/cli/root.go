package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// serverURL is the base URL of the API server, settable via --server.
var serverURL string

var rootCmd = &cobra.Command{
	Use:   "docchat-cli",
	Short: "A CLI client for the document chat service",
	Long:  `A command-line interface for uploading PDF documents and asking questions about them.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the API server")
}
