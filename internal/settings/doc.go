// Package settings owns the process-wide ticker settings.
//
// The settings value is:
//   - Loaded once at startup from durable storage (defaults on miss or
//     corrupt data)
//   - Read and mutated only through the Store, which serializes every
//     read-modify-write under one lock
//   - Persisted before each in-memory swap, so a failed write never
//     leaves memory and disk disagreeing
//   - Announced to the UI layer via the settings-updated broadcast topic
package settings
