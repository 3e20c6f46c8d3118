// Package ledger implements the tamper-evident event ledger at the heart of
// counterlog: attendance check-ins and counter-assistance sessions recorded as
// immutable, hash-chained records.
//
// The chain starts from a well-known genesis constant (64 hex zeros). Every
// record stores the hash of its predecessor in arrival order, and its own hash
// is a salted SHA-256 over the predecessor hash, record id, server timestamp
// and the canonical JSON of the business payload. Any in-place edit of a
// stored record is therefore detectable by the Verifier.
//
// The package is split along responsibilities:
//   - HashEngine: the pure chain-linking hash function.
//   - Writer: validates business invariants and appends exactly one record
//     per accepted event.
//   - Resolver: derives "active assist session" and "already attended" state
//     by scanning records.
//   - Verifier: replays the full record set and reports every chain break or
//     content mismatch as data, never as an error.
//
// Storage is abstracted behind the Store interface, which deliberately offers
// only "read all rows" and "append one row". There are no transactions and no
// compare-and-swap: within one process the Writer's mutex serialises appends,
// and a deployment must funnel all writes through a single process (or an
// external lease) to keep the chain fork-free across instances.
package ledger
