// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of buildstore.Store.
//
// # Characteristics
//
//   - **Ephemeral:** History lives only as long as the process
//   - **Thread-Safe:** Counters and records sit behind one mutex
//   - **Ordered:** Records are returned newest first by start time
//
// It is the default store for one-shot CLI runs. Use sqlitestore when
// history has to survive between runs.
package inmemorystore
