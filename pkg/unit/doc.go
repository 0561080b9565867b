// Package unit implements the in-memory representation of one managed
// unit: its append-only revision timeline, the owner-affine reentrant
// lock guarding compound runtime operations, the locale-keyed localized
// header cache, and the handle aggregating them behind access-checked
// forwarding to the runtime facade.
package unit
