// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - SearchProvider: Web search with provider-side summaries (Exa)
//   - Crawler: Page scraping, crawling, site mapping and extraction (Firecrawl)
//
// Either may be nil when its provider is disabled in configuration; the
// tools backed by a nil port are simply not registered.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
