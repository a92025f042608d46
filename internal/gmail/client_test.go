package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/golang-lru/v2/expirable"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// newTestClient builds a Client whose Gmail service talks to the given
// handler instead of the real API.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL),
	)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	return &Client{
		svc:     svc.Users,
		account: "test",
		cache:   expirable.NewLRU[string, *Email](DefaultCacheSize, nil, DefaultCacheTTL),
	}
}

func writeMessage(w http.ResponseWriter, id string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":%q,"threadId":"t1","labelIds":["INBOX","UNREAD"],"snippet":"hello","payload":{"mimeType":"text/plain","headers":[{"name":"From","value":"alice@example.com"},{"name":"Subject","value":"Hello"}],"body":{"data":"aGVsbG8="}}}`, id)
}

func TestGetEmailServesFromCache(t *testing.T) {
	var fetches int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&fetches, 1)
		writeMessage(w, "m1")
	}))

	ctx := context.Background()
	first, err := c.GetEmail(ctx, "m1")
	if err != nil {
		t.Fatalf("GetEmail() error = %v", err)
	}
	if first.Subject != "Hello" || first.Body != "hello" {
		t.Errorf("mapped email subject = %q body = %q, want Hello and hello", first.Subject, first.Body)
	}
	if first.IsRead {
		t.Error("IsRead = true for a message carrying the UNREAD label")
	}

	if _, err := c.GetEmail(ctx, "m1"); err != nil {
		t.Fatalf("GetEmail() second call error = %v", err)
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("API fetches = %d, want 1 (second read must come from cache)", got)
	}
	if c.CacheLen() != 1 {
		t.Errorf("CacheLen() = %d, want 1", c.CacheLen())
	}
}

func TestModifyEmailEvictsCache(t *testing.T) {
	var fetches int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/modify") {
			writeMessage(w, "m1")
			return
		}
		atomic.AddInt32(&fetches, 1)
		writeMessage(w, "m1")
	}))

	ctx := context.Background()
	if _, err := c.GetEmail(ctx, "m1"); err != nil {
		t.Fatalf("GetEmail() error = %v", err)
	}
	if err := c.ModifyEmail(ctx, "m1", []string{"Label_1"}, nil); err != nil {
		t.Fatalf("ModifyEmail() error = %v", err)
	}
	if _, err := c.GetEmail(ctx, "m1"); err != nil {
		t.Fatalf("GetEmail() after modify error = %v", err)
	}

	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Errorf("API fetches = %d, want 2 (modify must evict the cached copy)", got)
	}
}

func TestTrashEvictsCache(t *testing.T) {
	var fetches int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/trash") {
			writeMessage(w, "m1")
			return
		}
		atomic.AddInt32(&fetches, 1)
		writeMessage(w, "m1")
	}))

	ctx := context.Background()
	if _, err := c.GetEmail(ctx, "m1"); err != nil {
		t.Fatalf("GetEmail() error = %v", err)
	}
	if err := c.Trash(ctx, "m1"); err != nil {
		t.Fatalf("Trash() error = %v", err)
	}
	if _, err := c.GetEmail(ctx, "m1"); err != nil {
		t.Fatalf("GetEmail() after trash error = %v", err)
	}

	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Errorf("API fetches = %d, want 2 (trash must evict the cached copy)", got)
	}
}

func TestRetryStopsOnNotFound(t *testing.T) {
	var attempts int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"not found"}}`)
	}))

	_, err := c.GetEmail(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1 (404 is not retryable)", got)
	}
}

func TestRetryRecoversFromServerErrors(t *testing.T) {
	var attempts int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"backend error"}}`)
			return
		}
		writeMessage(w, "m1")
	}))

	email, err := c.GetEmail(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetEmail() error = %v, want success after retries", err)
	}
	if email.ID != "m1" {
		t.Errorf("email ID = %q, want m1", email.ID)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3 (two server errors then success)", got)
	}
}

func TestSearchEmailsClampsMaxResults(t *testing.T) {
	var listMax []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") {
			listMax = append(listMax, r.URL.Query().Get("maxResults"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"messages":[{"id":"m1"}],"resultSizeEstimate":1}`)
			return
		}
		writeMessage(w, "m1")
	}))

	ctx := context.Background()
	emails, err := c.SearchEmails(ctx, "is:unread", 500)
	if err != nil {
		t.Fatalf("SearchEmails() error = %v", err)
	}
	if len(emails) != 1 {
		t.Errorf("len(emails) = %d, want 1", len(emails))
	}

	if _, err := c.SearchEmails(ctx, "is:unread", 0); err != nil {
		t.Fatalf("SearchEmails() error = %v", err)
	}

	want := []string{"100", "1"}
	if len(listMax) != len(want) {
		t.Fatalf("list calls = %v, want %v", listMax, want)
	}
	for i := range want {
		if listMax[i] != want[i] {
			t.Errorf("list call %d maxResults = %q, want %q", i, listMax[i], want[i])
		}
	}
}

func TestSearchEmailsPaginates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("pageToken") == "" {
				fmt.Fprint(w, `{"messages":[{"id":"m1"}],"nextPageToken":"p2"}`)
			} else {
				fmt.Fprint(w, `{"messages":[{"id":"m2"}]}`)
			}
			return
		}
		writeMessage(w, path.Base(r.URL.Path))
	}))

	emails, err := c.SearchEmails(context.Background(), "is:unread", 2)
	if err != nil {
		t.Fatalf("SearchEmails() error = %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("len(emails) = %d, want 2", len(emails))
	}
	if emails[0].ID != "m1" || emails[1].ID != "m2" {
		t.Errorf("email ids = %q, %q, want m1, m2 in input order", emails[0].ID, emails[1].ID)
	}
}
