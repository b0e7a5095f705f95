// Package classify maps low-level transport failures onto the small set of
// categories the login front end reasons about.
//
// Callers never inspect platform error codes. A dial, read or write error
// goes through Classify and comes out as one of:
//
//	ConnectionRefused  nothing listening on the server port
//	Timeout            dial or response deadline expired
//	Reset              peer reset or closed the connection before replying
//	ProtocolError      reply was not a valid auth response
//	ApplicationRejection  server answered success=false
//	Canceled           attempt canceled by the caller
//	Unknown            anything else (DNS failure, unreachable host, ...)
//
// ProtocolError and ApplicationRejection are never produced by Classify
// itself; the handshake assigns them after decoding the reply.
package classify
