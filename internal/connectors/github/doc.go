// Package github talks to the GitHub REST API on behalf of the list pipeline.
//
// A single Client serves three driven ports:
//
//   - [driven.RepositoryInspector]: repository metadata plus computed scores
//   - [driven.RepositoryLister]: every repository of a user or organisation
//   - [driven.ReadmeFetcher]: the decoded README of a repository
//
// # Authentication
//
// A personal access token (config github.token or GITHUB_TOKEN) is sent
// through an oauth2 static token source. Without a token the client runs
// unauthenticated, which GitHub limits to 60 requests per hour.
//
// # Rate Limiting
//
// Requests pass a dual-strategy limiter:
//
//  1. Proactive throttling: a token bucket keeps the request rate under the
//     hourly quota.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset headers
//     are tracked, and when the remaining quota drops below a buffer the
//     limiter waits for the reset.
//
// # Scores
//
// Inspect rates each repository on four 0-100 metrics, keyed p (popularity),
// h (hotness), a (activity) and m (maturity); see [Scores].
package github
