// Package proxy implements the proxy build step: a step that replays the build
// steps of another project, with parameter values reconciled against that
// project's declared parameters.
//
// The package has two parts. The Resolver finds the target project in the
// item registry and exposes its parameter definitions and ordered build
// steps. The Replayer performs those steps against the current build,
// stopping at the first failure. Proxy ties them together and implements the
// build.Builder contract itself, so a proxy can target a project that
// contains proxies.
//
// Nothing is cached: every Prebuild and Perform looks the target up again, so
// changes to the target project are picked up by the next build.
package proxy
