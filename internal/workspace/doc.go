// Package workspace owns the per-user scratch directories under the shared
// temp root. A directory is created lazily on first use, emptied after every
// request and never removed.
//
// Each user has at most one active request: Acquire hands out a single slot
// per user and refuses a second caller instead of queueing it.
package workspace
