// Package resolvers provides the entry resolver chain. Resolvers enrich
// entries with live metadata and cache what they fetch so repeated runs
// stay off the network.
package resolvers
