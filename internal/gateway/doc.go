// Package gateway exposes the operations the UI and tray layer may invoke
// against the core: read settings, replace them wholesale, toggle one
// source flag, set the background color, run a one-shot fetch, and request
// process termination. Every operation is independently safe under
// concurrent invocation; mutators return the resulting settings so callers
// can reflect new state without a separate read.
package gateway
