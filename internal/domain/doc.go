// Package domain defines the value types shared by the loader, normalizer,
// metric fetchers, pipeline and results store.
//
// Nothing here imports another internal package or touches I/O. JSON and DB
// tags are the only infrastructure allowed on these types.
package domain
