// Package dispatch delivers the terminal outcome of a login attempt.
//
// A TCP socket can surface more than one of {data, error, timeout} for a
// single logical attempt, for example an RST arriving right after the
// reply was read. Dispatcher is a one-shot latch: the first Resolve call
// records the outcome and forwards it; every later call is dropped.
// Nothing is queued or deferred.
package dispatch
