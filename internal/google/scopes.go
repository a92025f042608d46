package google

// DefaultOAuthScopes are the Google OAuth scopes required for mailsense.
//
// The scopes provide access to:
//   - Gmail read: message and thread content, labels, profile
//   - Gmail modify: label changes, trash, read/unread state
//   - Gmail labels: label creation and listing
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.labels",
}
