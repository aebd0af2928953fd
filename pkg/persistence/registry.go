package persistence

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ProviderConfig contains provider-specific configuration
type ProviderConfig struct {
	Type   string          `yaml:"type" json:"type"`
	Config json.RawMessage `yaml:"config" json:"config"`
}

// StoreFactory creates storage backends from configuration
type StoreFactory func(config json.RawMessage) (Store, error)

var (
	registry = make(map[string]StoreFactory)
	mu       sync.RWMutex
)

// RegisterProvider registers a store factory for a provider type
func RegisterProvider(providerType string, factory StoreFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[providerType] = factory
}

// NewStore creates a storage backend from provider configuration
func NewStore(providerConfig ProviderConfig) (Store, error) {
	mu.RLock()
	factory, ok := registry[providerConfig.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown storage provider type: %s", providerConfig.Type)
	}

	return factory(providerConfig.Config)
}

// ListProviders returns registered provider types
func ListProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	providers := make([]string, 0, len(registry))
	for name := range registry {
		providers = append(providers, name)
	}
	return providers
}
