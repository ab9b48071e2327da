package llm

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Config is what a provider factory needs to build a client.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
	RateLimit   float64
}

// Factory builds a provider from its configuration.
type Factory func(cfg Config) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a provider factory to the global registry.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New builds the named provider.
func New(name string, cfg Config) (Provider, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", name, err)
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
