package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/seichimap/spoke-cli/pkg/anthropic"
)

// fakeAI is a canned-response Client for pipeline tests. Safe for the
// concurrent calls GenerateAll makes.
type fakeAI struct {
	text  string
	err   error
	calls atomic.Int64
}

func (f *fakeAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}
