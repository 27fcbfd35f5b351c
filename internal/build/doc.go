// Package build holds the per-build state that build steps run against: the
// console, the attached actions (parameters among them), the environment and
// the chain of projects whose steps are running. It also defines the Builder
// contract every step kind implements.
package build
