// Package memory implements the two-tier memory subsystem.
//
// ShortTerm is a bounded in-process cache with TTL expiry and LRU eviction.
// LongTerm persists entries, documents and embeddings to Postgres and ranks
// recall candidates by a configurable mix of similarity, recency and access
// history. Tiered composes the two behind the same core.MemoryStore
// contract: short-term is always consulted first, and long-term
// unavailability degrades recall and persistence to short-term-only instead
// of failing the run.
package memory
