package z3

import "sync"

// ffi serializes entry into the Z3 C API. Z3 contexts are not safe for
// concurrent use, so the lock is taken immediately before each individual
// foreign call and released as soon as it returns; it is never held across a
// sequence of calls. This makes single calls race-free but does NOT make
// multi-call sequences atomic: a Push followed by an Assert on one goroutine
// can interleave with calls from another goroutine touching the same or a
// different handle. Callers that need sequence-level atomicity must add their
// own coarser synchronization.
//
// A handle must not be closed while another goroutine still has an operation
// on it in flight; the release call goes through this same lock but the lock
// cannot protect against use-after-close.
var ffi sync.Mutex
