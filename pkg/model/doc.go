// Package model describes the archive-level state of managed units:
// lifecycle states, declared identities, raw manifests and the key layout
// used by archive stores.
package model
