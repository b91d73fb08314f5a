package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	userID     = "me"
	fullFormat = "full"
)

// Client is the narrow mail API surface used by the pipeline
type Client interface {
	ListMessageIDs(ctx context.Context, q ListQuery) ([]string, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

// ListQuery is a single listing call: search string, label filter and result cap
type ListQuery struct {
	Raw        string
	Label      string
	MaxResults int
}

// GmailClient adapts *gmail.Service to Client
type GmailClient struct {
	svc *gmail.Service
}

// NewGmailClient creates a Gmail client authorized by ts
func NewGmailClient(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*GmailClient, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailClient{svc: svc}, nil
}

// NewGmailClientFromService wraps an existing service
func NewGmailClientFromService(svc *gmail.Service) *GmailClient {
	return &GmailClient{svc: svc}
}

// ListMessageIDs issues one listing call and returns ids in provider order
func (c *GmailClient) ListMessageIDs(ctx context.Context, q ListQuery) ([]string, error) {
	call := c.svc.Users.Messages.List(userID).Q(q.Raw)
	if q.MaxResults > 0 {
		call = call.MaxResults(int64(q.MaxResults))
	}
	if q.Label != "" {
		call = call.LabelIds(q.Label)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		if m != nil && m.Id != "" {
			ids = append(ids, m.Id)
		}
	}
	log.Debug().Str("query", q.Raw).Int("count", len(ids)).Msg("gmail messages listed")
	return ids, nil
}

// GetMessage fetches a full message
func (c *GmailClient) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := c.svc.Users.Messages.Get(userID, id).Format(fullFormat).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return msg, nil
}
