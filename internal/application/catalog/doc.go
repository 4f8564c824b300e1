// Package catalog implements the user and item operations behind the API.
//
// The service coordinates the record store, the event bus and metrics:
//   - applies field defaults to create requests
//   - delegates id assignment and ordering to the store
//   - publishes user.created / item.created events
//   - seeds the initial records on start
package catalog
