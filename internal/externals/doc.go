// Package externals models declared external repositories and owns the flat
// key-value configuration file together with the companion ignore-list file.
package externals
