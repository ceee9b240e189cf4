package chat

//go:generate mockgen -source=chatter.go -destination=mock_chatter_test.go -package=chat

import (
	"context"

	"github.com/odvcencio/tripdesk/pkg/api"
)

// Chatter sends one utterance to the assistant. *api.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}
