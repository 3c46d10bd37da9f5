// Package repositories implements the persistent key-value stores behind the state container.
//
// Each store holds one serialized document per collection key and exposes the same four operations:
// Read, Write, Delete and Keys. Reads of unset keys report absence rather than an error.
//
// Key Implementations:
//   - [CollectionRepository] : SQLite persistence in the collections table
//   - [MemoryStore] : In-process map with an optional byte quota, used in tests and for throwaway sessions
//
// Every SQLite write is stamped with a sequence number drawn from collections_sequence.
// The [NextSequence] function atomically increments the counter so the most recently written collection can be identified.
package repositories
