// Package memory provides the in-process stores behind the auth service.
//
//   - UserStore: username to user record, one RWMutex over a map. Registration
//     holds the write lock across check, id assignment and insert.
//   - SessionRegistry: username to live token on a sharded map (pkg/cmap).
//     Only the shard owning a username is locked.
//
// Nothing here is persisted; all state is lost on restart.
package memory
