// Package cli implements the interactive chatgate client: a small REPL that
// logs in, keeps the access token in memory and sends queries.
package cli
