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

// Package tcp implements libsck.Server over a TCP/TCP4/TCP6 listener, with
// optional TLS termination.
package tcp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	libtls "github.com/halcyon-net/netcore/certificates"
	libsck "github.com/halcyon-net/netcore/socket"
	sckstm "github.com/halcyon-net/netcore/socket/internal/stream"
)

// handshakeTimeout bounds how long a single accepted connection's TLS
// handshake is allowed to take before it is treated as a failure.
const handshakeTimeout = 10 * time.Second

// ServerTcp is a libsck.Server bound to a TCP listener. RegisterServer binds
// (or re-binds) the listen address; SetTLS toggles TLS termination and
// applies immediately to every connection accepted afterward, whether
// called before or after RegisterServer.
type ServerTcp interface {
	libsck.Server

	// RegisterServer binds address (host:port) as the listener used by
	// Listen, replacing any previous binding.
	RegisterServer(address string) error

	// SetTLS enables or disables TLS termination for every connection
	// accepted from this point on. cfg is ignored when enabled is false.
	SetTLS(enabled bool, cfg libtls.TLSConfig) error

	// Multicast sends p to every currently connected session without
	// waiting for any of them to finish.
	Multicast(p []byte)

	// MulticastSync sends p to every currently connected session, one at a
	// time, and reports how many accepted the write and the first error
	// encountered.
	MulticastSync(p []byte) (int, error)
}

type srv struct {
	*sckstm.Core

	mu          sync.Mutex
	network     string
	idleTimeout time.Duration
	tlsEnabled  bool
	tlsConfig   libtls.TLSConfig
}

// New constructs a TCP server around handler, listening on network "tcp";
// upd may be nil. Use NewNetwork for "tcp4" or "tcp6".
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc) ServerTcp {
	return &srv{
		Core:    sckstm.NewCore(upd, handler),
		network: "tcp",
	}
}

// NewNetwork is like New but pins the listen network explicitly, used by the
// tcp4/tcp6 variants dispatched from socket/server.
func NewNetwork(network string, upd libsck.UpdateConn, handler libsck.HandlerFunc) ServerTcp {
	s := New(upd, handler).(*srv)
	if network != "" {
		s.network = network
	}
	return s
}

// SetIdleTimeout sets the idle session reaping duration applied to
// subsequent binds. Zero disables reaping.
func (s *srv) SetIdleTimeout(d time.Duration) {
	s.mu.Lock()
	s.idleTimeout = d
	s.mu.Unlock()
}

// SetTLS enables or disables TLS termination. Because RegisterServer's
// listener and the handshake hook are independent (Core.prepareConn is
// read fresh for every accepted connection), SetTLS takes effect
// immediately: it is safe to call either before or after RegisterServer,
// and in the latter case every connection accepted from then on goes
// through the new setting.
func (s *srv) SetTLS(enabled bool, cfg libtls.TLSConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !enabled {
		s.tlsEnabled = false
		s.tlsConfig = nil
		s.Core.SetPrepareConn(nil)
		return nil
	}
	if cfg == nil {
		return fmt.Errorf("tcp: TLS config must not be nil when enabling TLS")
	}
	s.tlsEnabled = true
	s.tlsConfig = cfg
	s.Core.SetPrepareConn(tlsHandshake(cfg.TlsConfig("")))
	return nil
}

func (s *srv) RegisterServer(address string) error {
	s.mu.Lock()
	network := s.network
	idle := s.idleTimeout
	enabled := s.tlsEnabled
	cfg := s.tlsConfig
	s.mu.Unlock()

	ln, err := net.Listen(network, address)
	if err != nil {
		return err
	}

	if enabled {
		s.Core.SetPrepareConn(tlsHandshake(cfg.TlsConfig("")))
	} else {
		s.Core.SetPrepareConn(nil)
	}

	s.Core.SetListener(ln, idle)
	return nil
}

// tlsHandshake returns a sckstm.PrepareFunc that wraps an accepted
// connection in a server-side TLS stream and drives its handshake to
// completion (or failure) before the connection is allowed to become a
// session, matching the explicit handshake phase a TLS-enabled server
// observes between accept and first receive.
func tlsHandshake(cfg *tls.Config) sckstm.PrepareFunc {
	return func(conn net.Conn) (net.Conn, error) {
		tlsConn := tls.Server(conn, cfg)
		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		defer cancel()
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		return tlsConn, nil
	}
}
