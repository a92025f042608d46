package email_tools

import (
	"testing"
)

func TestValidateActionArgs(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		labelIDs []string
		wantErr  bool
	}{
		{name: "read", action: "read"},
		{name: "unread", action: "unread"},
		{name: "archive", action: "archive"},
		{name: "delete", action: "delete"},
		{name: "star", action: "star"},
		{name: "unstar", action: "unstar"},
		{name: "label with ids", action: "label", labelIDs: []string{"Label_1"}},
		{name: "unlabel with ids", action: "unlabel", labelIDs: []string{"Label_1", "Label_2"}},
		{name: "label without ids", action: "label", wantErr: true},
		{name: "unlabel without ids", action: "unlabel", wantErr: true},
		{name: "unknown action", action: "shred", wantErr: true},
		{name: "empty action", action: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateActionArgs(tt.action, tt.labelIDs)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateActionArgs(%q, %v) error = %v, wantErr %v", tt.action, tt.labelIDs, err, tt.wantErr)
			}
		})
	}
}
