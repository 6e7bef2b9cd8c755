// Package processors provides the built-in source processors.
//
// Each processor claims the source types it understands. Terminal processors
// (markdown, url.list, entries) produce categorised entries; the others rewrite
// their source into a simpler one that re-enters the chain, e.g.
// github.repos -> entries, markdown.url -> markdown.
package processors
