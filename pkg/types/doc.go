// Package types defines the crate graph model, platform classification
// types, configuration, and standard error values shared across the
// buckshift migration engine.
package types
