package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inletlabs/mailsense/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		remove  bool
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account for Gmail access",
		Long: `Authorize mailsense to access a Gmail account and store the OAuth token
locally. The token is saved per account name, so multiple Google accounts
can be used side by side (e.g. --account work, --account personal).

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment;
see 'mailsense setup' for how to obtain them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				if err := google.RemoveTokenForAccount(account); err != nil {
					return fmt.Errorf("failed to remove token for account %s: %w", account, err)
				}
				fmt.Printf("Removed stored token for account %q\n", account)
				return nil
			}
			return runAuth(cmd.Context(), account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name to authorize (default: 'default')")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the stored token for the account instead of authorizing")

	return cmd
}

func runAuth(ctx context.Context, account string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if google.HasTokenForAccount(account) {
		fmt.Printf("A token for account %q already exists; continuing will replace it.\n\n", account)
	}

	authURL, err := google.GetAuthURLForAccount(account)
	if err != nil {
		return err
	}

	fmt.Printf(`To authorize access for account %q:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access to Gmail
3. Copy the authorization code

Enter the authorization code: `, account, authURL)

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}

	fmt.Printf("\nToken saved for account %q. You can now run 'mailsense serve'.\n", account)
	return nil
}
