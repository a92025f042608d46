package email_tools

import (
	"testing"
)

func TestParseSearchFilters(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantErr   bool
		wantQuery string
	}{
		{
			name:      "empty args",
			args:      map[string]interface{}{},
			wantQuery: "-in:spam -in:trash",
		},
		{
			name: "free-form query only",
			args: map[string]interface{}{
				"query": "invoice",
			},
			wantQuery: "invoice -in:spam -in:trash",
		},
		{
			name: "all structured filters",
			args: map[string]interface{}{
				"sender":          "alice@example.com",
				"recipient":       "bob@example.com",
				"subjectContains": "weekly report",
				"dateFrom":        "2024/01/01",
				"dateTo":          "2024/06/30",
				"hasAttachment":   true,
				"isUnread":        true,
				"labels":          []interface{}{"work", "important"},
			},
			wantQuery: "from:alice@example.com to:bob@example.com subject:(weekly report) after:2024/01/01 before:2024/06/30 has:attachment is:unread label:work label:important -in:spam -in:trash",
		},
		{
			name: "single label as string",
			args: map[string]interface{}{
				"labels": "work",
			},
			wantQuery: "label:work -in:spam -in:trash",
		},
		{
			name: "negated booleans",
			args: map[string]interface{}{
				"hasAttachment": false,
				"isUnread":      false,
			},
			wantQuery: "-has:attachment is:read -in:spam -in:trash",
		},
		{
			name: "labels with non-string element",
			args: map[string]interface{}{
				"labels": []interface{}{"work", 42},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := parseSearchFilters(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSearchFilters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := filters.BuildQuery(); got != tt.wantQuery {
				t.Errorf("BuildQuery() = %q, want %q", got, tt.wantQuery)
			}
		})
	}

	// Tri-state booleans: absent must stay nil, present must be set
	filters, err := parseSearchFilters(map[string]interface{}{"hasAttachment": true})
	if err != nil {
		t.Fatalf("parseSearchFilters() error = %v", err)
	}
	if filters.HasAttachment == nil || *filters.HasAttachment != *boolPtr(true) {
		t.Errorf("HasAttachment = %v, want true", filters.HasAttachment)
	}
	if filters.IsUnread != nil {
		t.Errorf("IsUnread = %v, want nil when absent", filters.IsUnread)
	}
}

func TestResolveMaxResults(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]interface{}
		configured int
		want       int64
	}{
		{
			name:       "explicit argument wins",
			args:       map[string]interface{}{"maxResults": float64(5)},
			configured: 50,
			want:       5,
		},
		{
			name:       "configured default when argument absent",
			args:       map[string]interface{}{},
			configured: 50,
			want:       50,
		},
		{
			name:       "built-in default when nothing configured",
			args:       map[string]interface{}{},
			configured: 0,
			want:       defaultSearchResults,
		},
		{
			name:       "non-number argument falls back to configured",
			args:       map[string]interface{}{"maxResults": "ten"},
			configured: 30,
			want:       30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMaxResults(tt.args, tt.configured); got != tt.want {
				t.Errorf("resolveMaxResults() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseSearchFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid date range",
			args: map[string]interface{}{
				"dateFrom": "2024/01/01",
				"dateTo":   "2024/12/31",
			},
			wantErr: false,
		},
		{
			name: "malformed dateFrom",
			args: map[string]interface{}{
				"dateFrom": "01-01-2024",
			},
			wantErr: true,
		},
		{
			name: "inverted range",
			args: map[string]interface{}{
				"dateFrom": "2024/12/31",
				"dateTo":   "2024/01/01",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := parseSearchFilters(tt.args)
			if err != nil {
				t.Fatalf("parseSearchFilters() error = %v", err)
			}
			if err := filters.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
