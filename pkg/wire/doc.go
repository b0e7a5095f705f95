// Package wire defines the login handshake wire format.
//
// The protocol is plaintext JSON over a TCP stream. The client sends one
// request immediately after connecting:
//
//	{"type":"auth","username":"alice","password":"secret"}
//
// and the server answers once:
//
//	{"success":true}
//	{"success":false,"message":"bad password"}
//
// # Framing
//
// The protocol carries no length prefix or delimiter. A reader must assume
// the whole reply arrives in a single read. The transport package offers
// newline framing as an opt-in for servers that terminate replies with
// '\n'; the codec accepts a trailing newline either way.
package wire
