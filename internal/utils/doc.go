// Package utils hosts shared infrastructure for the externals CLI: the zap
// logger factory, the viper-backed configuration loader, and the accessor for
// values carried through command contexts.
package utils
