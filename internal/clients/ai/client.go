package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
)

// Turn is one entry of the conversation handed to the generator.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the tutor-reply generator. The model behind it is a black box:
// ordered turns plus an optional context label in, a single text out.
type Client interface {
	Generate(ctx context.Context, turns []Turn, contextLabel string) (string, error)
}

type functionClient struct {
	fns      remote.Functions
	function string
	log      *logger.Logger
}

func NewClient(fns remote.Functions, function string, baseLog *logger.Logger) Client {
	if function == "" {
		function = "generate-tutor-reply"
	}
	return &functionClient{fns: fns, function: function, log: baseLog.With("client", "AIClient")}
}

func (c *functionClient) Generate(ctx context.Context, turns []Turn, contextLabel string) (string, error) {
	if c.fns == nil {
		return "", errors.New("ai: generation backend is not configured")
	}
	req := struct {
		Messages []Turn `json:"messages"`
		Context  string `json:"context,omitempty"`
	}{Messages: turns, Context: contextLabel}

	var resp struct {
		Text  string `json:"text"`
		Error string `json:"error,omitempty"`
	}
	if err := c.fns.Invoke(ctx, c.function, req, &resp); err != nil {
		return "", fmt.Errorf("ai generation failed: %w", err)
	}
	if resp.Error != "" {
		return "", errors.New(resp.Error)
	}
	return resp.Text, nil
}
