// Package results stores and serves enriched post metrics.
//
// Results are unique by URL. Saving a result for a URL that already exists
// overwrites its platform, metrics, engagement rate, campaign and notes,
// keeps the stored creator and post time unless new non-empty values are
// given, and always refreshes fetched_at.
//
// Repository implementations live in repository/postgres/ and repository/sqlite/.
package results
