// Package ui adapts execshell command lifecycle events into human-readable
// console log lines for interactive runs.
package ui
