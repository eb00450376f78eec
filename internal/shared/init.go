// Package shared provides common initialization utilities used by the
// webhook-intake server and the review-orchestrator worker process.
package shared

import (
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/orchestrator"
	"github.com/verustcode/verustcode/pkg/logger"
)

// InitProviders initializes Git providers from configuration and returns a
// map of provider type -> provider instance alongside their configs.
func InitProviders(cfg *config.Config) (map[string]provider.Provider, map[string]*config.ProviderConfig) {
	providers := make(map[string]provider.Provider)
	providerConfigs := make(map[string]*config.ProviderConfig)

	for _, pc := range cfg.Git.Providers {
		pcCopy := pc

		opts := &provider.ProviderOptions{
			Token:              pc.Token,
			BaseURL:            pc.URL,
			InsecureSkipVerify: pc.InsecureSkipVerify,
		}

		p, err := provider.Create(pc.Type, opts)
		if err != nil {
			logger.Warn("Failed to create provider",
				zap.String("type", pc.Type),
				zap.Error(err),
			)
			continue
		}
		providers[pc.Type] = p
		providerConfigs[pc.Type] = &pcCopy
		logger.Info("Initialized Git provider",
			zap.String("type", pc.Type),
			zap.String("url", pc.URL),
			zap.Bool("insecure_skip_verify", pc.InsecureSkipVerify),
		)
	}

	if len(providers) == 0 {
		logger.Warn("No Git providers configured")
	}

	return providers, providerConfigs
}

// ProviderResolver builds an orchestrator.ProviderResolver closure over the
// providers initialized from configuration.
func ProviderResolver(providers map[string]provider.Provider) orchestrator.ProviderResolver {
	return func(name string) (provider.Provider, error) {
		p, ok := providers[name]
		if !ok {
			return nil, &provider.ProviderError{Provider: name, Message: "provider not configured"}
		}
		return p, nil
	}
}
