// Package app wires configuration, upstream clients, the tool registry and
// the dispatcher into a ready-to-serve set of services.
package app

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/config"
	"github.com/custodia-labs/webrelay/internal/adapters/driven/crawler/firecrawl"
	"github.com/custodia-labs/webrelay/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/webrelay/internal/adapters/driven/search/exa"
	"github.com/custodia-labs/webrelay/internal/core/services"
	"github.com/custodia-labs/webrelay/internal/logger"
)

// ErrNoProviders indicates every provider is disabled.
var ErrNoProviders = errors.New("no providers enabled")

// Services holds the constructed application graph.
type Services struct {
	Config     *config.Config
	Registry   *services.Registry
	Dispatcher *services.Dispatcher
}

// Build constructs the services for cfg.
// An enabled provider without a credential is an error wrapping
// domain.ErrMissingCredential.
func Build(cfg *config.Config, version string) (*Services, error) {
	httpCfg := httpapi.Config{
		Timeout:           cfg.HTTP.Timeout,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		Retry: httpapi.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
		UserAgent: "webrelay/" + version,
	}

	registry := services.NewRegistry()

	if cfg.Exa.Enabled {
		provider, err := exa.New(exa.Config{
			APIKey:  cfg.Exa.APIKey,
			BaseURL: cfg.Exa.BaseURL,
			HTTP:    httpCfg,
		})
		if err != nil {
			return nil, err
		}
		tools := services.NewSearchTools(provider, services.SearchDefaults{
			NumResults:     cfg.Search.DefaultNumResults,
			IncludeDomains: cfg.Search.IncludeDomains,
			SummaryQuery:   cfg.Search.SummaryQuery,
		})
		if err := tools.Register(registry); err != nil {
			return nil, fmt.Errorf("registering search tools: %w", err)
		}
	} else {
		logger.Info("exa disabled, search tools not registered")
	}

	if cfg.Firecrawl.Enabled {
		crawler, err := firecrawl.New(firecrawl.Config{
			APIKey:       cfg.Firecrawl.APIKey,
			BaseURL:      cfg.Firecrawl.BaseURL,
			PollInterval: cfg.Extract.PollInterval,
			HTTP:         httpCfg,
		})
		if err != nil {
			return nil, err
		}
		if err := services.NewCrawlTools(crawler).Register(registry); err != nil {
			return nil, fmt.Errorf("registering crawl tools: %w", err)
		}
	} else {
		logger.Info("firecrawl disabled, crawl tools not registered")
	}

	if registry.Len() == 0 {
		return nil, ErrNoProviders
	}

	dispatcher := services.NewDispatcher(registry, services.DispatcherOptions{
		StrictArguments: cfg.Dispatcher.StrictArguments,
		CallTimeout:     cfg.Dispatcher.CallTimeout,
	})
	logger.Debug("registered %d tools", registry.Len())

	return &Services{
		Config:     cfg,
		Registry:   registry,
		Dispatcher: dispatcher,
	}, nil
}
