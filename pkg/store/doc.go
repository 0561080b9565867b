// Package store defines the archive boundary of the unit core: the Store
// interface persisting one unit's revision history and bookkeeping, and
// the Content interface exposing a revision's resources. The core
// surfaces storage failures but never retries them.
package store
