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

// Package stream holds the session and accept-loop machinery shared by the
// connection-oriented transports (tcp, unix): one goroutine owns the
// HandlerFunc and calls Read/Write on the session, which queues outgoing
// data through a double-buffered send pipeline so at most one conn.Write is
// ever in flight for a given session.
package stream

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	libsck "github.com/halcyon-net/netcore/socket"
)

// Session adapts a net.Conn into a libsck.Context. Read is not safe for
// concurrent use by design: the owning HandlerFunc is the only reader.
// Write may be called concurrently with itself (the send pipeline below
// serializes the actual network writes); a handler that only ever calls
// Write from its own goroutine never needs to think about this.
type Session struct {
	conn net.Conn

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	err    error

	idleTimeout time.Duration
	lastActive  atomicTime

	// txMu guards the send pipeline: main is the buffer a Write call
	// appends to, flush is the buffer currently being drained to conn,
	// flushOff is how much of flush has already been written, and sending
	// is true while a conn.Write for this session is in flight. try_send
	// swaps main and flush once flush has been fully written, so a Write
	// arriving mid-send never blocks on the network and never races a
	// second conn.Write against this one.
	txMu     sync.Mutex
	main     libsck.Buffer
	flush    libsck.Buffer
	flushOff int
	sending  bool

	bytesReceived atomic.Int64
	bytesSent     atomic.Int64

	onInfo     FuncInfoOf
	onReceived FuncReceivedOf
	onSent     FuncSentOf
	onEmpty    FuncEmptyOf
}

// FuncInfoOf reports a ConnState transition for the session that owns it.
type FuncInfoOf func(local, remote net.Addr, state libsck.ConnState)

// FuncReceivedOf reports bytes read by the session that owns it.
type FuncReceivedOf func(local, remote net.Addr, p []byte)

// FuncSentOf reports a completed send-pipeline write for the session that
// owns it.
type FuncSentOf func(local, remote net.Addr, delta, pending int)

// FuncEmptyOf reports that the session's send pipeline has fully drained.
type FuncEmptyOf func(local, remote net.Addr)

// New wraps conn into a Session. idleTimeout of zero disables idle reaping;
// every callback may be nil.
func New(conn net.Conn, idleTimeout time.Duration, onInfo FuncInfoOf, onReceived FuncReceivedOf, onSent FuncSentOf, onEmpty FuncEmptyOf) *Session {
	s := &Session{
		conn:        conn,
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		onInfo:      onInfo,
		onReceived:  onReceived,
		onSent:      onSent,
		onEmpty:     onEmpty,
	}
	s.lastActive.store(time.Now())
	return s
}

func (s *Session) report(state libsck.ConnState) {
	if s.onInfo != nil {
		s.onInfo(s.conn.LocalAddr(), s.conn.RemoteAddr(), state)
	}
}

func (s *Session) fireReceived(p []byte) {
	if s.onReceived != nil {
		s.onReceived(s.conn.LocalAddr(), s.conn.RemoteAddr(), p)
	}
}

func (s *Session) fireSent(delta, pending int) {
	if s.onSent != nil {
		s.onSent(s.conn.LocalAddr(), s.conn.RemoteAddr(), delta, pending)
	}
}

func (s *Session) fireEmpty() {
	if s.onEmpty != nil {
		s.onEmpty(s.conn.LocalAddr(), s.conn.RemoteAddr())
	}
}

// Read implements libsck.Context.
func (s *Session) Read(p []byte) (int, error) {
	s.report(libsck.ConnectionRead)
	n, err := s.conn.Read(p)
	s.lastActive.store(time.Now())
	if n > 0 {
		s.bytesReceived.Add(int64(n))
		s.fireReceived(p[:n])
	}
	if err != nil {
		s.report(libsck.ConnectionCloseRead)
	}
	return n, err
}

// Write implements libsck.Context. It appends p to the session's main send
// buffer and, unless another call is already draining it, drives the
// pipeline itself: this keeps Write synchronous (it returns only once p has
// actually reached conn.Write) for the common single-goroutine caller,
// while still queuing safely behind a concurrent in-flight send.
func (s *Session) Write(p []byte) (int, error) {
	s.report(libsck.ConnectionWrite)

	n := len(p)
	s.txMu.Lock()
	if err := s.main.Append(p); err != nil {
		s.txMu.Unlock()
		s.report(libsck.ConnectionCloseWrite)
		return 0, err
	}
	inFlight := s.sending
	s.txMu.Unlock()

	if inFlight {
		s.lastActive.store(time.Now())
		return n, nil
	}

	if err := s.trySend(); err != nil {
		s.lastActive.store(time.Now())
		s.report(libsck.ConnectionCloseWrite)
		return 0, err
	}
	s.lastActive.store(time.Now())
	return n, nil
}

// trySend is the core send-pipeline algorithm: swap main into flush once
// flush is empty, write whatever flush currently holds, advance flushOff by
// however much actually went out, and repeat until both buffers are empty.
// At most one goroutine ever reaches the conn.Write call at a time: a
// second caller observes sending == true under txMu and returns immediately
// instead of entering the loop, trusting the in-flight call to pick up
// whatever it just appended to main.
func (s *Session) trySend() error {
	for {
		s.txMu.Lock()
		if s.sending {
			s.txMu.Unlock()
			return nil
		}
		if s.flush.Len() == 0 {
			if s.main.Len() == 0 {
				s.txMu.Unlock()
				return nil
			}
			s.main, s.flush = s.flush, s.main
			s.flushOff = 0
		}
		s.sending = true
		chunk := s.flush.Bytes()[s.flushOff:]
		s.txMu.Unlock()

		n, err := s.conn.Write(chunk)

		s.txMu.Lock()
		s.sending = false
		if n > 0 {
			s.flushOff += n
			s.bytesSent.Add(int64(n))
		}
		if s.flushOff >= s.flush.Len() {
			s.flush.Reset()
			s.flushOff = 0
		}
		pending := s.main.Len() + (s.flush.Len() - s.flushOff)
		s.txMu.Unlock()

		if err != nil {
			return err
		}

		s.fireSent(n, pending)
		if pending == 0 {
			s.fireEmpty()
			return nil
		}
	}
}

// BytesPending returns the number of bytes appended to Write but not yet
// handed to conn.Write.
func (s *Session) BytesPending() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.main.Len()
}

// BytesSending returns the number of bytes currently in flight (handed to
// conn.Write but not yet confirmed written).
func (s *Session) BytesSending() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.flush.Len() - s.flushOff
}

// BytesSent returns the cumulative number of bytes this session has
// written to the peer.
func (s *Session) BytesSent() int64 {
	return s.bytesSent.Load()
}

// BytesReceived returns the cumulative number of bytes this session has
// read from the peer.
func (s *Session) BytesReceived() int64 {
	return s.bytesReceived.Load()
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

// Close implements libsck.Context. Safe to call more than once.
func (s *Session) Close() error {
	return s.CloseWithError(nil)
}

// CloseWithError closes the session recording cause as the reason returned
// by Err, unless the session was already closed.
func (s *Session) CloseWithError(cause error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.err = cause
	close(s.done)
	s.mu.Unlock()

	s.report(libsck.ConnectionClose)
	return libsck.ErrorFilter(s.conn.Close())
}

// IsConnected implements libsck.Context.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// RemoteHost implements libsck.Context.
func (s *Session) RemoteHost() string {
	if !s.IsConnected() {
		return ""
	}
	return s.conn.RemoteAddr().String()
}

// LocalHost implements libsck.Context.
func (s *Session) LocalHost() string {
	if !s.IsConnected() {
		return ""
	}
	return s.conn.LocalAddr().String()
}

// Idle reports whether the session has been silent for longer than the
// configured idle timeout. Always false when idle reaping is disabled.
func (s *Session) Idle() bool {
	if s.idleTimeout <= 0 {
		return false
	}
	return time.Since(s.lastActive.load()) > s.idleTimeout
}

// Conn exposes the wrapped connection, for a server applying UpdateConn or
// negotiating TLS before the session is handed to HandlerFunc.
func (s *Session) Conn() net.Conn {
	return s.conn
}

// Run reports ConnectionNew, invokes handler with s, then reports
// ConnectionClose and closes s once the handler returns or ctx is done.
// With a non-zero idle timeout, s is also closed (Err returning
// context.DeadlineExceeded) once Idle reports true.
func Run(ctx context.Context, s *Session, handler libsck.HandlerFunc, onErr libsck.FuncError) {
	s.report(libsck.ConnectionNew)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.CloseWithError(ctx.Err())
		case <-s.done:
		}
	}()

	if s.idleTimeout > 0 {
		go func() {
			t := time.NewTicker(s.idleTimeout)
			defer t.Stop()
			for s.IsConnected() {
				<-t.C
				if s.Idle() {
					_ = s.CloseWithError(context.DeadlineExceeded)
				}
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			if onErr != nil {
				onErr(libsck.ErrorFilter(errRecovered(r)))
			}
		}
		_ = s.Close()
	}()

	s.report(libsck.ConnectionHandler)
	handler(s)
}
