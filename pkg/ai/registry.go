package ai

import (
	"fmt"
	"sync"

	"rftriage/pkg/config"
)

// ProviderType represents a supported LLM provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
)

// ProviderFactory is a function that creates a Provider from config.
type ProviderFactory func(cfg config.Config) (Provider, error)

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Type        ProviderType
	Name        string
	Description string
	RequiresKey bool
}

// Registry manages provider factories and instantiation.
type Registry struct {
	mu        sync.RWMutex
	factories map[ProviderType]ProviderFactory
	info      map[ProviderType]ProviderInfo
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[ProviderType]ProviderFactory),
		info:      make(map[ProviderType]ProviderInfo),
	}
}

// Register adds a provider factory to the registry.
func (r *Registry) Register(info ProviderInfo, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[info.Type] = factory
	r.info[info.Type] = info
}

// Create instantiates a provider of the given type.
func (r *Registry) Create(providerType ProviderType, cfg config.Config) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[providerType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}
	return factory(cfg)
}

// List returns info for all registered providers.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ProviderInfo, 0, len(r.info))
	for _, info := range r.info {
		infos = append(infos, info)
	}
	return infos
}

// defaultRegistry holds the providers registered via init().
var defaultRegistry = NewRegistry()

// RegisterProvider adds a provider factory to the default registry.
func RegisterProvider(info ProviderInfo, factory ProviderFactory) {
	defaultRegistry.Register(info, factory)
}

// NewProvider creates the provider selected by the configuration.
func NewProvider(cfg config.Config) (Provider, error) {
	return defaultRegistry.Create(ProviderType(cfg.Provider), cfg)
}
