// Package cli is the interactive operator console for the shop ledger.
//
// It drives the same repositories as the HTTP server, in process, with one
// ledger connection. Secrets are read from the terminal without echo. The
// REPL is started with App.Run and blocks until the user exits.
package cli
