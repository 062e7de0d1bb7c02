// Package storage provides the durable key-value backing for persisted
// state. The only production implementation is an embedded BuntDB file;
// an in-memory store is available for hosts where the settings file
// cannot be opened and for tests.
package storage
