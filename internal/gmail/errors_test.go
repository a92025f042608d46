package gmail

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestWrapAPIError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		sentinel error
	}{
		{name: "not found", code: 404, sentinel: ErrNotFound},
		{name: "rate limited", code: 429, sentinel: ErrRateLimited},
		{name: "forbidden", code: 403, sentinel: ErrPermission},
		{name: "unauthorized", code: 401, sentinel: ErrPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := &googleapi.Error{Code: tt.code, Message: "boom"}
			wrapped := wrapAPIError("get message x", apiErr)

			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapAPIError(%d) = %v, want errors.Is %v", tt.code, wrapped, tt.sentinel)
			}
		})
	}
}

func TestWrapAPIErrorServerError(t *testing.T) {
	apiErr := &googleapi.Error{Code: 500, Message: "internal"}
	wrapped := wrapAPIError("list messages", apiErr)

	for _, sentinel := range []error{ErrNotFound, ErrRateLimited, ErrPermission} {
		if errors.Is(wrapped, sentinel) {
			t.Errorf("500 should not map to %v", sentinel)
		}
	}

	var got *googleapi.Error
	if !errors.As(wrapped, &got) {
		t.Error("original googleapi.Error should stay in the chain")
	}
}

func TestWrapAPIErrorNil(t *testing.T) {
	if got := wrapAPIError("op", nil); got != nil {
		t.Errorf("wrapAPIError(nil) = %v, want nil", got)
	}
}

func TestWrapAPIErrorNonAPI(t *testing.T) {
	plain := fmt.Errorf("connection reset")
	wrapped := wrapAPIError("get profile", plain)

	if !errors.Is(wrapped, plain) {
		t.Error("plain errors should be wrapped, keeping the original in the chain")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limit retryable", err: &googleapi.Error{Code: 429}, want: true},
		{name: "server error retryable", err: &googleapi.Error{Code: 503}, want: true},
		{name: "not found permanent", err: &googleapi.Error{Code: 404}, want: false},
		{name: "forbidden permanent", err: &googleapi.Error{Code: 403}, want: false},
		{name: "plain error permanent", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
