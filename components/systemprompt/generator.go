package systemprompt

import (
	"fmt"
	"strings"
	"sync"
)

// Generator is system prompt generator framework
type Generator interface {
	Generate() string
	// ContextProvider retrieves a context provider by name.
	// If the context provider is not found returns not found error
	ContextProvider(title string) (ContextProvider, error)
	// AddContextProviders registers new context providers
	AddContextProviders(providers ...ContextProvider)
	// RemoveContextProviders Unregisters an existing context provider.
	RemoveContextProviders(titles ...string)
}

// BaseGenerator keeps the context providers shared by every generator.
// Generators are shared by concurrent requests, so access is guarded.
type BaseGenerator struct {
	contextProviders []ContextProvider
	mtx              sync.RWMutex
}

// ContextProviders returns a snapshot of the registered providers
func (g *BaseGenerator) ContextProviders() []ContextProvider {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	ret := make([]ContextProvider, len(g.contextProviders))
	copy(ret, g.contextProviders)
	return ret
}

// ContextProvider retrieves a context provider by name.
// If the context provider is not found returns not found error
func (g *BaseGenerator) ContextProvider(title string) (ContextProvider, error) {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	return g.find(title)
}

func (g *BaseGenerator) find(title string) (ContextProvider, error) {
	for _, p := range g.contextProviders {
		if p.Title() == title {
			return p, nil
		}
	}
	return nil, fmt.Errorf("context provider '%s' not found", title)
}

// AddContextProviders registers new context providers, skipping titles already present
func (g *BaseGenerator) AddContextProviders(providers ...ContextProvider) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	for _, provider := range providers {
		if _, err := g.find(provider.Title()); err != nil {
			g.contextProviders = append(g.contextProviders, provider)
		}
	}
}

// RemoveContextProviders Unregisters existing context providers.
func (g *BaseGenerator) RemoveContextProviders(titles ...string) {
	mp := make(map[string]struct{}, len(titles))
	for _, v := range titles {
		mp[v] = struct{}{}
	}
	g.mtx.Lock()
	defer g.mtx.Unlock()
	providers := make([]ContextProvider, 0, len(g.contextProviders))
	for _, p := range g.contextProviders {
		if _, found := mp[p.Title()]; found {
			continue
		}
		providers = append(providers, p)
	}
	g.contextProviders = providers
}

// RenderContext renders the EXTRA INFORMATION AND CONTEXT section, empty when no provider has info
func (g *BaseGenerator) RenderContext() []string {
	var parts []string
	for _, provider := range g.ContextProviders() {
		if info := provider.Info(); info != "" {
			parts = append(parts, fmt.Sprintf("## %s", provider.Title()), info, "")
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return append([]string{"# EXTRA INFORMATION AND CONTEXT"}, parts...)
}

// Join trims and joins prompt parts
func Join(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
