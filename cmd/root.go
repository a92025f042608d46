package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailsense application
var rootCmd = &cobra.Command{
	Use:   "mailsense",
	Short: "MCP server for Gmail inbox access and LLM-backed email analysis",
	Long: `mailsense exposes a Gmail inbox to AI assistants through the Model
Context Protocol (MCP). It provides tools to search, read and act on
emails, and to analyze them with an LLM (sentiment, priority, category
and summaries).

By default the server runs in read-only mode; use --yolo to enable
write operations such as archiving, labeling and trashing emails.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailsense version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
