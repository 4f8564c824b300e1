// Package storage provides the record store implementation.
//
// Implementations:
//   - memory: ordered, id-indexed collections living for the process lifetime
package storage
