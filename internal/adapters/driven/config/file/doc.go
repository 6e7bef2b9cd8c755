// Package file provides the TOML configuration store.
//
// Configuration lives in curator.toml (or the path given with --config).
// Tables are flattened into dot-notation keys on load and nested again on
// save, so "github.token" addresses
//
//	[github]
//	token = "..."
package file
