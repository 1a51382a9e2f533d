// Package cli provides the interactive AirPass command-line client.
//
// It wires configuration, the local SQLite store, the API services and a
// REPL that keeps working while the server is unreachable: exposures logged
// offline are queued locally and replayed by 'sync' or automatically when
// the connectivity watcher sees the server come back.
//
// Commands:
//   - signup / login / logout / whoami
//   - log: record an exposure (queued while offline)
//   - passport, insights
//   - health [set|conditions|delete]
//   - history [limit|summary [days]|add|clear]
//   - export [download|list]
//   - sync, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
