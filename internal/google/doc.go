// Package google provides OAuth2 authentication and token management for the Gmail API.
//
// Tokens are cached on disk under the user cache directory, one file per
// account, so multiple Google accounts can be used side by side. The OAuth
// client id and secret come from the GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET
// environment variables.
package google
