package driven

import (
	"context"
	"time"
)

// Score metric keys reported by a RepositoryInspector.
const (
	ScorePopularity = "p"
	ScoreHotness    = "h"
	ScoreActivity   = "a"
	ScoreMaturity   = "m"
)

// RepositoryInfo is the live metadata of one repository.
type RepositoryInfo struct {
	Description string
	Language    string
	LicenseID   string
	ScoresAvg   int
	Scores      map[string]int
	PushedAt    time.Time
	Archived    bool
	Fork        bool
	Stars       int
}

// RepositoryInspector fetches live metadata for a repository.
type RepositoryInspector interface {
	Inspect(ctx context.Context, author, name string) (*RepositoryInfo, error)
}

// RepositoryRef names one repository of an author.
type RepositoryRef struct {
	Author string
	Name   string
	Fork   bool
}

// RepositoryLister enumerates the repositories of a user or organisation.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, author string) ([]RepositoryRef, error)
}

// ReadmeFetcher returns the README markdown of a repository.
type ReadmeFetcher interface {
	Readme(ctx context.Context, author, name string) (string, error)
}
