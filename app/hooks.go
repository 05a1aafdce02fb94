package app

import (
	"context"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/logger"
	"github.com/bububa/teachassist/tools"
)

// agentHooks logs responder start, end and failure
func agentHooks() agents.Option {
	return agents.WithHooks(
		func(ctx context.Context, agent *agents.Agent, input string) {
			logger.FromContext(ctx).Debug("responder start", "responder", agent.Name(), "input", input)
		},
		func(ctx context.Context, agent *agents.Agent, transcript *components.Memory, resp *components.LLMResponse) {
			log := logger.FromContext(ctx).With("responder", agent.Name(), "turn", transcript.TurnID())
			if resp != nil {
				log = log.With("model", resp.Model, "capability_calls", len(resp.ToolCalls))
				if resp.Usage != nil {
					log = log.With("tokens", resp.Usage.Total())
				}
			}
			log.Info("responder end", "messages", transcript.MessageCount())
		},
		func(ctx context.Context, agent *agents.Agent, input string, _ *components.LLMResponse, err error) {
			logger.FromContext(ctx).Error("responder failed", "responder", agent.Name(), "input", input, "error", err)
		},
	)
}

// toolHooks logs capability calls
func toolHooks() []tools.Option {
	return []tools.Option{
		tools.WithStartHook(func(ctx context.Context, tool tools.ITool, input any) {
			logger.FromContext(ctx).Debug("capability call", "capability", tool.Title(), "input", input)
		}),
		tools.WithEndHook(func(ctx context.Context, tool tools.ITool, _ any, _ any) {
			logger.FromContext(ctx).Debug("capability done", "capability", tool.Title())
		}),
		tools.WithErrorHook(func(ctx context.Context, tool tools.ITool, input any, err error) {
			logger.FromContext(ctx).Warn("capability failed", "capability", tool.Title(), "input", input, "error", err)
		}),
	}
}
