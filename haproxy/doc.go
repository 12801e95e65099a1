// Package haproxy implements a client for the HAProxy runtime admin
// endpoint (the "stats socket").
//
// The admin protocol is plaintext: one command per connection, terminated
// by a newline, with the response read to EOF. Errors are signalled
// in-band as text, never as status codes. The package exposes typed
// operations over that protocol (info, backend/server queries, server
// state changes) and a registry that routes requests across several
// independently addressed HAProxy processes.
package haproxy
