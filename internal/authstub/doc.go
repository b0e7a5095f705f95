// Package authstub is a scriptable login server for tests and local runs.
//
// Each accepted connection reads one auth request and then hands the
// connection to a Behavior, which decides what the client sees: a proper
// reply, garbage, silence, a reset. After the behavior returns, the stub
// keeps reading until the client closes so tests can observe how the
// client released the socket.
package authstub
