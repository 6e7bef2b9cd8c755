// Package domain defines the core entities of the curator pipeline.
//
// This package is the innermost layer of the hexagon. It has NO external
// dependencies and defines the fundamental types:
//
//   - Entry: One catalog item (e.g. a GitHub repository) with a stable id
//   - Source: A declarative input that yields entries
//   - Category / CategoryTree: The grouping applied to a list's entries
//   - EntryGroups: Category-keyed entries in first-encounter order
//   - Action: A processor's claim on an input
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
