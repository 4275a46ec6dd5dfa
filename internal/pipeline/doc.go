// Package pipeline turns an uploaded spreadsheet into enriched metric
// results.
//
// One ProcessFile call loads and normalizes the rows, fetches YouTube
// statistics in batches through a StatsFetcher, fetches Instagram and TikTok
// posts one at a time through an Extractor, computes engagement rates, and
// resolves post timestamps. Only input problems (unsupported format, no
// usable rows) fail the call; every fetch failure is recorded in
// Output.Errors and processing continues. Work inside a call is sequential.
package pipeline
