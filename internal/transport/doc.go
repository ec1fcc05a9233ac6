// Package transport carries opaque envelopes between devices over the
// directory's websocket relay.
//
// A Conn is an explicit connection object: the caller dials it, passes it to
// whatever needs to send or receive, and closes it. There is no package
// level connection.
package transport
