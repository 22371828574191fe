/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package socket defines the shared vocabulary of the asynchronous socket
// server and client implementations: connection lifecycle states, the
// HandlerFunc invoked per connection, the Context a handler reads and writes
// through, and the Server/Client interfaces implemented by every transport
// under socket/server and socket/client.
package socket

import (
	"context"
	"errors"
	"io"
	"net"
)

// DefaultBufferSize is the read buffer size used by a session when the
// caller does not size its own buffer.
const DefaultBufferSize = 32 * 1024

// EOL is the byte used by callers that frame outgoing messages with a
// trailing newline; the package itself never appends it.
const EOL = '\n'

// closedConnMessage is the exact error text net.Conn.Read/Write return once
// the underlying fd has been closed locally. Only this literal string is
// filtered by ErrorFilter; anything wrapping or merely containing it is not.
const closedConnMessage = "use of closed network connection"

// ErrNotConnected is reported through FuncError when a TLS-enabled server's
// handshake fails: the accepted connection is closed before a session is
// ever created for it, so neither on_handshaked nor on_received fires.
var ErrNotConnected = errors.New("socket: not connected")

// ErrorFilter returns nil for err == nil and for an error whose message is
// exactly "use of closed network connection" (the error net.Conn returns
// after Close), since that case is an expected side effect of shutdown, not
// a failure to report. Every other error, including one that wraps or
// merely contains that message, is returned unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if err.Error() == closedConnMessage {
		return nil
	}
	return err
}

// FuncError receives the errors a session or server encounters outside the
// handler itself (accept/dial/read/write/close failures already passed
// through ErrorFilter by the caller).
type FuncError func(errs ...error)

// FuncInfo is called on every ConnState transition of a session, with the
// local and remote addresses of the underlying connection.
type FuncInfo func(local, remote net.Addr, state ConnState)

// FuncInfoServer is called with free-form lifecycle messages of the server
// itself (bind, accept-loop start/stop, shutdown) rather than of a single
// session.
type FuncInfoServer func(msg string)

// FuncReceived is called with the bytes a session just read off the wire,
// once per completed Read.
type FuncReceived func(local, remote net.Addr, p []byte)

// FuncSent is called once a session's send pipeline finishes writing a
// chunk: delta is the number of bytes that completion covered, pending is
// the number of bytes still queued (in flight or waiting in main) after it.
type FuncSent func(local, remote net.Addr, delta, pending int)

// FuncEmpty is called once a session's send pipeline has drained
// completely: nothing is in flight and nothing is queued in main.
type FuncEmpty func(local, remote net.Addr)

// UpdateConn customizes a freshly dialed or accepted net.Conn (deadlines,
// keep-alive, buffer sizes) before the session takes over read/write.
type UpdateConn func(conn net.Conn)

// Response receives the bytes a server sent back in reply to a Client.Once
// request.
type Response func(r io.Reader)

// Context is the per-connection handle a HandlerFunc uses to exchange data
// with the peer and observe cancellation. Read and Write behave like the
// embedded io.ReadWriter; a server never calls them concurrently with the
// handler itself, so a handler is free to call them from a single
// goroutine without its own locking.
type Context interface {
	io.ReadWriter

	// Done is closed when the session is being torn down, either because
	// the peer disconnected, the server is shutting down, or an idle
	// timeout elapsed.
	Done() <-chan struct{}

	// Err returns the reason Done was closed, or nil while the session is
	// still active.
	Err() error

	// Close tears down the underlying connection. Safe to call more than
	// once and safe to call from the handler itself.
	Close() error

	// IsConnected reports whether the underlying connection is still open.
	IsConnected() bool

	// RemoteHost returns the String() of the peer address, or "" once the
	// session is closed.
	RemoteHost() string

	// LocalHost returns the String() of the local address, or "" once the
	// session is closed.
	LocalHost() string
}

// HandlerFunc is invoked once per accepted connection (stream transports)
// or once per datagram (packet transports), on its own goroutine. It owns
// ctx for the lifetime of the call and must not retain it afterward.
type HandlerFunc func(ctx Context)

// Handler is an alias of HandlerFunc kept for callers that prefer to name a
// handler type distinctly from the function performing the work; being a
// true alias, a Handler value is assignable anywhere a HandlerFunc is
// expected and vice versa.
type Handler = HandlerFunc

// Server is implemented by every protocol-specific listener under
// socket/server, and by the socket/server dispatcher that routes to them.
type Server interface {
	// RegisterFuncError registers the callback invoked for errors raised
	// outside the handler. Passing nil disables reporting.
	RegisterFuncError(fct FuncError)

	// RegisterFuncInfo registers the callback invoked on every session
	// ConnState transition. Passing nil disables reporting.
	RegisterFuncInfo(fct FuncInfo)

	// RegisterFuncInfoServer registers the callback invoked with
	// server-level lifecycle messages. Passing nil disables reporting.
	RegisterFuncInfoServer(fct FuncInfoServer)

	// RegisterFuncReceived registers the callback invoked with the bytes a
	// session reads off the wire. Passing nil disables reporting.
	RegisterFuncReceived(fct FuncReceived)

	// RegisterFuncSent registers the callback invoked every time a
	// session's send pipeline completes a write. Passing nil disables
	// reporting.
	RegisterFuncSent(fct FuncSent)

	// RegisterFuncEmpty registers the callback invoked whenever a session's
	// send pipeline fully drains. Passing nil disables reporting.
	RegisterFuncEmpty(fct FuncEmpty)

	// Listen runs the accept loop until ctx is done or the listener is
	// closed, dispatching each connection to the registered handler on its
	// own goroutine. It returns once the loop stops.
	Listen(ctx context.Context) error

	// Shutdown stops accepting new connections and waits for in-flight
	// sessions to finish, or for ctx to expire.
	Shutdown(ctx context.Context) error

	// IsRunning reports whether Listen is actively accepting connections.
	IsRunning() bool

	// IsGone reports whether the server has never been started or has
	// fully stopped and released its listener.
	IsGone() bool

	// OpenConnections returns the number of sessions currently tracked by
	// the server.
	OpenConnections() int64

	// Listener returns the local address of the currently bound socket, and
	// its string form, or a nil address and an empty string before the
	// first successful bind.
	Listener() (net.Addr, string, error)

	// Close immediately tears down the listener and every open session.
	Close() error
}

// Client is implemented by every protocol-specific dialer under
// socket/client, and by the socket/client dispatcher that routes to them.
type Client interface {
	// RegisterFuncError registers the callback invoked for errors raised
	// outside of a direct Read/Write/Connect call. Passing nil disables
	// reporting.
	RegisterFuncError(fct FuncError)

	// RegisterFuncInfo registers the callback invoked on every ConnState
	// transition of the underlying connection. Passing nil disables
	// reporting.
	RegisterFuncInfo(fct FuncInfo)

	// Connect dials the configured endpoint. Calling Connect again after a
	// Close re-dials.
	Connect(ctx context.Context) error

	// Close tears down the underlying connection.
	Close() error

	// Read reads from the underlying connection.
	Read(p []byte) (int, error)

	// Write writes to the underlying connection.
	Write(p []byte) (int, error)

	// IsConnected reports whether the underlying connection is open.
	IsConnected() bool

	// Once dials if necessary, sends req in full, optionally hands the
	// reply to fn, and leaves the connection in whatever state it was
	// before the call (closing it again if Once itself opened it).
	Once(ctx context.Context, req io.Reader, fn Response) error
}
