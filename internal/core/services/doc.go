// Package services implements the driving port interfaces.
// The Registry holds tool descriptors and handlers; the Dispatcher
// validates calls against them and renders every outcome as text.
//
// Tool handlers live here too. They depend only on driven ports, so
// the concrete search and crawl providers are wired in by the caller.
package services
