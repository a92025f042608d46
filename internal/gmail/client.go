package gmail

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/inletlabs/mailsense/internal/google"
)

const (
	// maxAPIAttempts bounds retries for transient Gmail API errors.
	maxAPIAttempts = 3

	// maxConcurrentFetches bounds parallel message detail fetches during search.
	maxConcurrentFetches = 10

	// maxPageSize is the Gmail API's maximum page size for list calls.
	maxPageSize = 100

	// DefaultCacheSize is the default message cache capacity.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long cached messages stay valid by default.
	DefaultCacheTTL = 5 * time.Minute
)

// CacheConfig configures the client's message cache.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// Client wraps the Gmail Users service with a TTL-bounded message cache
// and retry on transient errors.
type Client struct {
	svc     *gmail.UsersService
	account string
	cache   *expirable.LRU[string, *Email]
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a Gmail client with OAuth2 authentication for a
// specific account. The token must already exist in the local token cache;
// use the auth command to bootstrap one.
func NewClientForAccount(ctx context.Context, account string, cacheCfg CacheConfig) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	if cacheCfg.Size <= 0 {
		cacheCfg.Size = DefaultCacheSize
	}
	if cacheCfg.TTL <= 0 {
		cacheCfg.TTL = DefaultCacheTTL
	}

	return &Client{
		svc:     svc.Users,
		account: account,
		cache:   expirable.NewLRU[string, *Email](cacheCfg.Size, nil, cacheCfg.TTL),
	}, nil
}

// NewClient creates a Gmail client for the default account.
func NewClient(ctx context.Context, cacheCfg CacheConfig) (*Client, error) {
	return NewClientForAccount(ctx, "default", cacheCfg)
}

// retryAPI runs a Gmail API call with exponential backoff. Only quota and
// server errors are retried; everything else fails on the first attempt.
func retryAPI[T any](ctx context.Context, op string, call func() (T, error)) (T, error) {
	result, err := backoff.Retry(ctx, func() (T, error) {
		v, err := call()
		if err != nil && !isRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxAPIAttempts),
	)
	if err != nil {
		var zero T
		return zero, wrapAPIError(op, err)
	}
	return result, nil
}

// GetEmail fetches a single message by id, serving from cache when a fresh
// copy exists.
func (c *Client) GetEmail(ctx context.Context, id string) (*Email, error) {
	if email, ok := c.cache.Get(id); ok {
		return email, nil
	}

	msg, err := retryAPI(ctx, "get message "+id, func() (*gmail.Message, error) {
		return c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	email, err := EmailFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to map message %s: %w", id, err)
	}

	c.cache.Add(id, email)
	return email, nil
}

// SearchEmails lists message ids matching the query, then fetches full
// details with bounded concurrency. maxResults is clamped to [1, 100].
func (c *Client) SearchEmails(ctx context.Context, query string, maxResults int64) ([]*Email, error) {
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	var ids []string
	pageToken := ""
	for int64(len(ids)) < maxResults {
		remaining := maxResults - int64(len(ids))

		req := c.svc.Messages.List("me").Q(query).MaxResults(remaining).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := retryAPI(ctx, "list messages", func() (*gmail.ListMessagesResponse, error) {
			return req.Do()
		})
		if err != nil {
			return nil, err
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	// Fetch details in parallel, keeping result order stable by index.
	emails := make([]*Email, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, id := range ids {
		g.Go(func() error {
			email, err := c.GetEmail(gctx, id)
			if err != nil {
				return err
			}
			emails[i] = email
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return emails, nil
}

// GetThread fetches all messages of a thread as flat Email records, in the
// order the API returns them (oldest first).
func (c *Client) GetThread(ctx context.Context, threadID string) ([]*Email, error) {
	thread, err := retryAPI(ctx, "get thread "+threadID, func() (*gmail.Thread, error) {
		return c.svc.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	emails := make([]*Email, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		email, err := EmailFromMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to map message %s in thread %s: %w", msg.Id, threadID, err)
		}
		c.cache.Add(email.ID, email)
		emails = append(emails, email)
	}

	return emails, nil
}

// ModifyEmail adds and removes label ids on a message. The cached copy is
// evicted so the next read reflects the new labels.
func (c *Client) ModifyEmail(ctx context.Context, id string, addLabels, removeLabels []string) error {
	_, err := retryAPI(ctx, "modify message "+id, func() (*gmail.Message, error) {
		return c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
			AddLabelIds:    addLabels,
			RemoveLabelIds: removeLabels,
		}).Context(ctx).Do()
	})
	if err != nil {
		return err
	}

	c.cache.Remove(id)
	return nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.ModifyEmail(ctx, id, nil, []string{labelUnread})
}

// MarkUnread adds the UNREAD label to a message.
func (c *Client) MarkUnread(ctx context.Context, id string) error {
	return c.ModifyEmail(ctx, id, []string{labelUnread}, nil)
}

// Star adds the STARRED label to a message.
func (c *Client) Star(ctx context.Context, id string) error {
	return c.ModifyEmail(ctx, id, []string{labelStarred}, nil)
}

// Unstar removes the STARRED label from a message.
func (c *Client) Unstar(ctx context.Context, id string) error {
	return c.ModifyEmail(ctx, id, nil, []string{labelStarred})
}

// Archive removes a message from the inbox.
func (c *Client) Archive(ctx context.Context, id string) error {
	return c.ModifyEmail(ctx, id, nil, []string{labelInbox})
}

// Trash moves a message to the trash. Gmail purges trashed messages after
// 30 days; there is no immediate permanent delete here.
func (c *Client) Trash(ctx context.Context, id string) error {
	_, err := retryAPI(ctx, "trash message "+id, func() (*gmail.Message, error) {
		return c.svc.Messages.Trash("me", id).Context(ctx).Do()
	})
	if err != nil {
		return err
	}

	c.cache.Remove(id)
	return nil
}

// ListLabels returns all labels of the mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	res, err := retryAPI(ctx, "list labels", func() (*gmail.ListLabelsResponse, error) {
		return c.svc.Labels.List("me").Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, Label{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// CreateLabel creates a user label with the given name.
func (c *Client) CreateLabel(ctx context.Context, name string) (*Label, error) {
	created, err := retryAPI(ctx, "create label "+name, func() (*gmail.Label, error) {
		return c.svc.Labels.Create("me", &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}
	return &Label{ID: created.Id, Name: created.Name, Type: created.Type}, nil
}

// UnreadCount returns Gmail's estimate of the number of unread messages.
// The result size estimate is approximate for large mailboxes.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	res, err := retryAPI(ctx, "count unread", func() (*gmail.ListMessagesResponse, error) {
		return c.svc.Messages.List("me").Q("is:unread").MaxResults(1).Context(ctx).Do()
	})
	if err != nil {
		return 0, err
	}
	return res.ResultSizeEstimate, nil
}

// Profile returns the mailbox profile. Used as a connectivity check.
func (c *Client) Profile(ctx context.Context) (*gmail.Profile, error) {
	return retryAPI(ctx, "get profile", func() (*gmail.Profile, error) {
		return c.svc.GetProfile("me").Context(ctx).Do()
	})
}

// CacheLen returns the number of messages currently cached.
func (c *Client) CacheLen() int {
	return c.cache.Len()
}
