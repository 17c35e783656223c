// Package cache provides the Redis-backed response cache for the retrieval
// gateway: deterministic key derivation from operation arguments and a
// key/value store with mandatory per-entry TTLs.
//
// The store degrades rather than fails: a backend that is unreachable is
// reported as a cache miss on reads, and write errors are advisory. A broken
// cache must never break a retrieval.
package cache
