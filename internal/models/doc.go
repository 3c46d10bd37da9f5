// Package models defines the collections persisted by the state container and the records ranked against them.
//
// The package contains two categories of types:
//
// 1. Collections: one document per named key in the persistent store
//   - [Profile] : Account name, email and creation time
//   - [Resume] : The uploaded resume with its ATS score and extracted skills
//   - [Preferences] : Search preferences used for job matching
//   - [Analysis] : Snapshot of the most recent resume analysis
//   - [Job] : Saved job records, stored as an ordered list
//   - [Metrics] : Derived aggregate, never written by callers directly
//
// 2. Inbound payloads
//   - [HydrationPayload] : Server-side analysis result imported into the collections
//
// [Collection] enumerates the named collections and maps each to its storage key.
package models
