package llmreview

import (
	"context"
	"fmt"
	"sync"
)

// Client generates suggestions for one review run's failing/warned checks.
type Client interface {
	Name() string
	GetConfig() *ClientConfig
	GenerateSuggestions(ctx context.Context, in GenerateInput) (*GenerateOutput, error)
}

// ClientFactory builds a Client from a ClientConfig.
type ClientFactory func(config *ClientConfig) (Client, error)

var (
	registry     = make(map[string]ClientFactory)
	registryLock sync.RWMutex
)

// Register registers a client factory under name; concrete clients call
// this from an init() func, mirroring the teacher's llm.Register pattern.
func Register(name string, factory ClientFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// Create builds a client by its registered name.
func Create(name string, config *ClientConfig) (Client, error) {
	registryLock.RLock()
	factory, ok := registry[name]
	registryLock.RUnlock()

	if !ok {
		return nil, NewClientError(name, "create", fmt.Sprintf("client %q not registered", name), ClassUnknown, 0, nil)
	}

	if config == nil {
		config = NewClientConfig(name)
	} else if config.Name == "" {
		config.Name = name
	}

	return factory(config)
}

// List returns every registered client name.
func List() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
