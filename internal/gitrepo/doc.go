// Package gitrepo wraps the git command line behind a RepositoryManager that
// probes repository state, performs clone, fetch, checkout, and reset
// operations, and normalizes remote URLs declared relative to the host
// repository's origin.
package gitrepo
