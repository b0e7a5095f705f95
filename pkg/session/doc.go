// Package session drives login attempts for one login window.
//
// A LoginSession runs at most one attempt at a time and turns each
// attempt's outcome into exactly one Notifier call: ConnectionError for
// transport failures, LoginFailed for rejections, Proceed on success.
// After a successful login the session is complete and refuses further
// submissions.
package session
