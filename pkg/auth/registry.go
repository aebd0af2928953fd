package auth

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// ProviderConfig selects a token provider by type; the provider-specific
// settings ride through untouched as raw JSON.
type ProviderConfig struct {
	Type   string          `yaml:"type" json:"type"`
	Config json.RawMessage `yaml:"config" json:"config"`
}

// ValidatorFactory creates validators from raw provider configuration.
type ValidatorFactory func(config json.RawMessage) (Validator, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]ValidatorFactory)
)

// RegisterProvider registers a validator factory under a provider type.
// Providers register themselves from init, so registration order is not
// meaningful; a later registration under the same type wins.
func RegisterProvider(providerType string, factory ValidatorFactory) {
	mu.Lock()
	defer mu.Unlock()
	factories[providerType] = factory
}

// NewValidator builds a validator for the configured provider type.
func NewValidator(providerConfig ProviderConfig) (Validator, error) {
	mu.RLock()
	factory, ok := factories[providerConfig.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown auth provider type: %s", providerConfig.Type)
	}

	return factory(providerConfig.Config)
}

// ListProviders returns the registered provider types, sorted.
func ListProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	providers := make([]string, 0, len(factories))
	for name := range factories {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}
