// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and adapters implement them.
//
// # Required Interfaces
//
//   - Storage: Path-keyed byte store for builds, lists and the resolver cache
//   - SourceProcessor / URLProcessor / EntryResolver: Pluggable pipeline stages
//   - ConfigStore: Application configuration
//   - BuildManager: Numbered builds and the build lock
//
// # Collaborator Interfaces
//
// Implemented by adapters and connectors, used by specific processors:
//
//   - RepositoryInspector: Live repository metadata (GitHub)
//   - RepositoryLister: Repositories of an author (GitHub)
//   - ReadmeFetcher: README markdown of a repository (GitHub)
//   - HTTPFetcher: Raw document bodies by URL
//   - MarkdownParser: Headings, list blocks and links in document order
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or processor package
package driven
