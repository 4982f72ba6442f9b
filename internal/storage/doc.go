// Package storage selects and opens the credential store.
//
// Two backends satisfy UserStore:
//
//   - memory: internal/storage/memory.UserStore, a locked map
//   - badger: BadgerUserStore, Badger v3 opened in in-memory mode with users
//     JSON-encoded under the "user/" key prefix
//
// Neither backend persists across restarts.
package storage
