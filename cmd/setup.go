package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inletlabs/mailsense/internal/google"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Print setup instructions and verify the local configuration",
		Long: `Check the local environment for everything mailsense needs and print
instructions for any missing piece: Google OAuth client credentials,
a stored account token, and the OpenAI API key for analysis tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup()
		},
	}
}

func runSetup() error {
	fmt.Println("mailsense setup check")
	fmt.Println()

	ok := true

	if os.Getenv("GOOGLE_CLIENT_ID") == "" || os.Getenv("GOOGLE_CLIENT_SECRET") == "" {
		ok = false
		fmt.Println("✗ Google OAuth client credentials not configured")
		fmt.Println()
		fmt.Println("  1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Println("  2. Create an OAuth client ID (application type: Desktop app)")
		fmt.Println("  3. Enable the Gmail API for the project")
		fmt.Println("  4. Export the credentials:")
		fmt.Println("       export GOOGLE_CLIENT_ID=<your-client-id>")
		fmt.Println("       export GOOGLE_CLIENT_SECRET=<your-client-secret>")
		fmt.Println()
	} else {
		fmt.Println("✓ Google OAuth client credentials configured")
	}

	if google.HasToken() {
		fmt.Println("✓ Stored Gmail token found for the default account")
	} else {
		ok = false
		fmt.Println("✗ No stored Gmail token for the default account")
		fmt.Println()
		fmt.Println("  Run 'mailsense auth' to authorize an account.")
		fmt.Println("  Use 'mailsense auth --account <name>' for additional accounts.")
		fmt.Println()
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("✓ OPENAI_API_KEY configured (analysis tools available)")
	} else {
		ok = false
		fmt.Println("✗ OPENAI_API_KEY not set")
		fmt.Println()
		fmt.Println("  The email_analyze and email_classify tools need an OpenAI API key:")
		fmt.Println("       export OPENAI_API_KEY=<your-api-key>")
		fmt.Println()
	}

	fmt.Println()
	if ok {
		fmt.Println("Everything looks good. Start the server with 'mailsense serve'.")
	} else {
		fmt.Println("Fix the items above, then re-run 'mailsense setup' to verify.")
	}
	return nil
}
