// Package services implements the curation pipeline behind the driving ports.
//
// EntryList drives source processors and entry resolvers for one list,
// ListStore persists lists between stages and Distributor writes resolved
// lists into a build. Pipeline composes them into the fetch, resolve and
// build stages.
package services
