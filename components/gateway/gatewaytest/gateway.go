// Package gatewaytest provides a scripted gateway for responder and orchestrator tests
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
)

// Call is a capability invocation the fake model performs before replying
type Call struct {
	Capability string
	Arguments  string
}

// Gateway plays back Calls through the granted capabilities, then returns Reply.
// ReplyFunc takes precedence over Reply and receives the capability results.
// Err is returned after the scripted calls ran.
type Gateway struct {
	Calls     []Call
	Reply     string
	ReplyFunc func(req *gateway.Request, results []string) (string, error)
	Err       error
	mtx       sync.Mutex
	requests  []*gateway.Request
}

var _ gateway.Gateway = (*Gateway)(nil)

func (g *Gateway) Provider() gateway.Provider {
	return "Fake"
}

func (g *Gateway) Model() string {
	return "fake-model"
}

func (g *Gateway) Generate(ctx context.Context, req *gateway.Request, resp *components.LLMResponse) (string, error) {
	g.mtx.Lock()
	g.requests = append(g.requests, req)
	g.mtx.Unlock()
	results := make([]string, 0, len(g.Calls))
	for idx, call := range g.Calls {
		result, _ := gateway.Invoke(ctx, req.Capabilities, fmt.Sprintf("call-%d", idx), call.Capability, json.RawMessage(call.Arguments), resp)
		results = append(results, result)
	}
	if g.Err != nil {
		return "", g.Err
	}
	if g.ReplyFunc != nil {
		return g.ReplyFunc(req, results)
	}
	return g.Reply, nil
}

// Requests returns every request received so far
func (g *Gateway) Requests() []*gateway.Request {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	ret := make([]*gateway.Request, len(g.requests))
	copy(ret, g.requests)
	return ret
}

// LastRequest returns the most recent request or nil
func (g *Gateway) LastRequest() *gateway.Request {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

// Capability is a canned capability recording its arguments
type Capability struct {
	CapabilityName string
	Result         string
	Err            error
	mtx            sync.Mutex
	args           []string
}

var _ gateway.Capability = (*Capability)(nil)

func (c *Capability) Name() string {
	return c.CapabilityName
}

func (c *Capability) Description() string {
	return "test capability " + c.CapabilityName
}

func (c *Capability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
	}
}

func (c *Capability) Call(_ context.Context, args json.RawMessage) (string, error) {
	c.mtx.Lock()
	c.args = append(c.args, string(args))
	c.mtx.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.Result, nil
}

// Args returns the raw arguments of every call
func (c *Capability) Args() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	ret := make([]string, len(c.args))
	copy(ret, c.args)
	return ret
}
