// Package registry is the host's item registry.
//
// It loads workspace files into items, answers lookups by name and by full
// name, and instantiates each project's declared steps into build.Builder
// values using the step kinds registered in a handlers.Handlers.
//
// Loading happens in two phases. All files are parsed first; only then are
// steps instantiated. Step kinds that configure themselves against other
// projects (the proxy step) can therefore see every item in the workspace
// regardless of file order.
package registry
