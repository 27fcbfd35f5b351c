// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags, environment and parameter files into the application's
// configuration and requests.
package cli
