// Package discovery finds login servers on the local network via mDNS.
//
// Servers advertise the service type _imauth._tcp in the local domain.
// TXT records carry:
//
//	name=<display name>
//	ver=<protocol version>
//
// Find returns the first server seen; Browse streams every server until
// the context ends. Advertise is used by the stub server.
package discovery
