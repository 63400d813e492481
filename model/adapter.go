package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcore/core"
)

// CompletionAdapter exposes any Model as a core.CompletionService by
// draining its response stream and projecting the final message into a
// ModelOutput. The engine only consumes final responses; partial streaming
// chunks are discarded here.
type CompletionAdapter struct {
	model Model
}

var _ core.CompletionService = (*CompletionAdapter)(nil)

// NewCompletionAdapter wraps a Model for use by the engine.
func NewCompletionAdapter(m Model) *CompletionAdapter {
	return &CompletionAdapter{model: m}
}

// Complete performs a single non-streaming completion.
func (a *CompletionAdapter) Complete(ctx context.Context, req core.CompletionRequest) (*core.ModelOutput, error) {
	respCh, errCh := a.model.Generate(ctx, Request{
		Instructions: req.Instructions,
		Messages:     req.History,
		Tools:        req.Tools,
	})

	var final *Response
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				r := resp
				final = &r
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("model %s: %w", a.model.Info().Name, err)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if final == nil {
		return nil, fmt.Errorf("model %s: stream closed without final response", a.model.Info().Name)
	}

	return &core.ModelOutput{
		Text:      final.Message.Text(),
		ToolCalls: final.Message.ToolCalls(),
	}, nil
}
