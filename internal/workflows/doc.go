// Package workflows implements the repository operations over declared
// externals: init, update, reset, cmd, list, and heads, together with their
// cobra command builders and the confirmation prompter used by bulk resets.
package workflows
