// Package app contains the host application. It wires the step kinds, the
// item registry, the proxy resolver and build history together, and runs
// builds, decoupled from any specific entrypoint like a CLI or server.
package app
