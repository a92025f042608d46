package google

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTokenFileForAccount(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		expected string
	}{
		{name: "default account", account: "default", expected: "default.token"},
		{name: "named account", account: "work", expected: "work.token"},
		{name: "empty falls back to default", account: "", expected: "default.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenFileForAccount(tt.account)
			if filepath.Base(got) != tt.expected {
				t.Errorf("tokenFileForAccount(%q) = %q, want base %q", tt.account, got, tt.expected)
			}
			if !strings.Contains(got, cacheDirName) {
				t.Errorf("tokenFileForAccount(%q) = %q, want path under %q", tt.account, got, cacheDirName)
			}
		})
	}
}

func TestHasTokenForAccountMissing(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if HasTokenForAccount("nonexistent") {
		t.Error("HasTokenForAccount should be false for a missing token file")
	}
}

func TestGetOAuthConfigRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	if _, err := getOAuthConfig(); err == nil {
		t.Error("getOAuthConfig should fail without client credentials")
	}
}

func TestGetOAuthConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")

	conf, err := getOAuthConfig()
	if err != nil {
		t.Fatalf("getOAuthConfig() error = %v", err)
	}
	if conf.ClientID != "test-client-id" {
		t.Errorf("ClientID = %q, want test-client-id", conf.ClientID)
	}
	if len(conf.Scopes) != len(DefaultOAuthScopes) {
		t.Errorf("Scopes = %v, want %v", conf.Scopes, DefaultOAuthScopes)
	}
}

func TestGetAuthURLForAccount(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")

	url, err := GetAuthURLForAccount("default")
	if err != nil {
		t.Fatalf("GetAuthURLForAccount() error = %v", err)
	}
	if !strings.Contains(url, "test-client-id") {
		t.Errorf("auth URL %q should contain the client id", url)
	}
	if !strings.Contains(url, "access_type=offline") {
		t.Errorf("auth URL %q should request offline access for a refresh token", url)
	}
	if !strings.Contains(url, "state=default") {
		t.Errorf("auth URL %q should carry the account as OAuth state", url)
	}
}

func TestGetAuthURLForAccountState(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")

	tests := []struct {
		account string
		state   string
	}{
		{account: "work", state: "state=work"},
		{account: "", state: "state=default"},
	}

	for _, tt := range tests {
		url, err := GetAuthURLForAccount(tt.account)
		if err != nil {
			t.Fatalf("GetAuthURLForAccount(%q) error = %v", tt.account, err)
		}
		if !strings.Contains(url, tt.state) {
			t.Errorf("GetAuthURLForAccount(%q) = %q, want state %q", tt.account, url, tt.state)
		}
	}
}
