// Package status reconciles declared externals against their on-disk
// repository state. Classification is a pure function over the declaration and
// the probed state; the Service adds probing, rendering, and aggregation.
package status
