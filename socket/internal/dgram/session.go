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

// Package dgram holds the session and receive-loop machinery shared by the
// connectionless transports (udp, unixgram): the underlying socket is
// shared by every peer, so a "session" here is a single datagram handed to
// HandlerFunc, wrapped so it still looks like a libsck.Context.
package dgram

import (
	"fmt"
	"io"
	"net"
	"sync"

	libsck "github.com/halcyon-net/netcore/socket"
)

// Session adapts one received datagram into a libsck.Context. The first
// Read returns the datagram payload; every subsequent Read returns io.EOF,
// matching the at-most-one-message-per-invocation shape of a datagram
// handler. Write sends a reply to the peer that sent the datagram.
type Session struct {
	conn   net.PacketConn
	local  net.Addr
	remote net.Addr
	data   []byte

	mu     sync.Mutex
	read   bool
	closed bool
	done   chan struct{}
	err    error

	onInfo     FuncInfoOf
	onReceived FuncReceivedOf
	onSent     FuncSentOf
	onEmpty    FuncEmptyOf
}

// FuncInfoOf reports a ConnState transition for the session that owns it.
type FuncInfoOf func(local, remote net.Addr, state libsck.ConnState)

// FuncReceivedOf reports the datagram payload read by the session that
// owns it.
type FuncReceivedOf func(local, remote net.Addr, p []byte)

// FuncSentOf reports a completed Write for the session that owns it.
type FuncSentOf func(local, remote net.Addr, delta, pending int)

// FuncEmptyOf reports that the session's single outstanding send has
// finished (a datagram session never queues more than one).
type FuncEmptyOf func(local, remote net.Addr)

// New wraps a single received datagram (data, from remote) into a Session
// that replies through conn. Every callback may be nil.
func New(conn net.PacketConn, local, remote net.Addr, data []byte, onInfo FuncInfoOf, onReceived FuncReceivedOf, onSent FuncSentOf, onEmpty FuncEmptyOf) *Session {
	return &Session{
		conn:       conn,
		local:      local,
		remote:     remote,
		data:       data,
		done:       make(chan struct{}),
		onInfo:     onInfo,
		onReceived: onReceived,
		onSent:     onSent,
		onEmpty:    onEmpty,
	}
}

func (s *Session) report(state libsck.ConnState) {
	if s.onInfo != nil {
		s.onInfo(s.local, s.remote, state)
	}
}

// Read implements libsck.Context.
func (s *Session) Read(p []byte) (int, error) {
	s.report(libsck.ConnectionRead)

	s.mu.Lock()
	if s.read {
		s.mu.Unlock()
		s.report(libsck.ConnectionCloseRead)
		return 0, io.EOF
	}
	s.read = true
	s.mu.Unlock()

	n := copy(p, s.data)
	if n > 0 && s.onReceived != nil {
		s.onReceived(s.local, s.remote, p[:n])
	}
	return n, nil
}

// Write implements libsck.Context. A datagram session never has more than
// one outstanding send, so a successful write always drains the pipeline:
// on_sent fires with pending == 0 and on_empty follows immediately.
func (s *Session) Write(p []byte) (int, error) {
	s.report(libsck.ConnectionWrite)
	n, err := s.conn.WriteTo(p, s.remote)
	if err != nil {
		s.report(libsck.ConnectionCloseWrite)
		return n, err
	}
	if s.onSent != nil {
		s.onSent(s.local, s.remote, n, 0)
	}
	if s.onEmpty != nil {
		s.onEmpty(s.local, s.remote)
	}
	return n, err
}

// Done implements libsck.Context.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err implements libsck.Context.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close implements libsck.Context. It does not close the shared socket,
// only marks this datagram's pseudo-session as finished.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.report(libsck.ConnectionClose)
	return nil
}

// IsConnected implements libsck.Context.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// RemoteHost implements libsck.Context.
func (s *Session) RemoteHost() string {
	return s.remote.String()
}

// LocalHost implements libsck.Context.
func (s *Session) LocalHost() string {
	return s.local.String()
}

// Run reports ConnectionNew, invokes handler with s, then closes s.
func Run(s *Session, handler libsck.HandlerFunc, onErr libsck.FuncError) {
	s.report(libsck.ConnectionNew)

	defer func() {
		if r := recover(); r != nil && onErr != nil {
			onErr(libsck.ErrorFilter(panicErr(r)))
		}
		_ = s.Close()
	}()

	s.report(libsck.ConnectionHandler)
	handler(s)
}

func panicErr(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("handler panic: %w", err)
	}
	return fmt.Errorf("handler panic: %v", r)
}
