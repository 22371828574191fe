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

// Package tcp dials a TCP endpoint on behalf of socket/client.
package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"

	libtls "github.com/halcyon-net/netcore/certificates"
	libsck "github.com/halcyon-net/netcore/socket"
	sckclc "github.com/halcyon-net/netcore/socket/internal/client"
)

var (
	// ErrInstance is returned by New when the constructed client would have
	// no usable network, which cannot currently happen for a TCP client but
	// is kept for parity with the other transports and for forward
	// compatibility.
	ErrInstance = errors.New("tcp client: invalid instance")

	// ErrConnection is returned by Read, Write and Close when called while
	// the client holds no live connection.
	ErrConnection = errors.New("tcp client: not connected")

	// ErrAddress is returned by New when address is not a valid host:port.
	ErrAddress = errors.New("tcp client: invalid address")
)

// ClientTCP is a socket/client dialer over a TCP connection.
type ClientTCP interface {
	libsck.Client

	// SetTLS switches the client to crypto/tls.Dial on the next Connect or
	// Once. cfg must be non-nil when enabled is true.
	SetTLS(enabled bool, cfg libtls.TLSConfig, serverName string) error
}

type cli struct {
	*sckclc.Core

	network string
	address string

	mu         sync.Mutex
	tlsEnabled bool
	tlsConfig  libtls.TLSConfig
	serverName string
}

// New validates address as a host:port pair and returns a client ready to
// Connect or Once against it over plain TCP.
func New(address string) (ClientTCP, error) {
	return NewNetwork("tcp", address)
}

// NewNetwork is New pinned to a specific TCP variant ("tcp", "tcp4", "tcp6").
func NewNetwork(network, address string) (ClientTCP, error) {
	if address == "" {
		return nil, ErrAddress
	}
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
		return nil, ErrAddress
	}
	_ = host

	return &cli{
		Core:    sckclc.NewCore(ErrConnection),
		network: network,
		address: address,
	}, nil
}

// SetTLS implements ClientTCP.
func (c *cli) SetTLS(enabled bool, cfg libtls.TLSConfig, serverName string) error {
	if enabled && cfg == nil {
		return ErrInstance
	}
	c.mu.Lock()
	c.tlsEnabled = enabled
	c.tlsConfig = cfg
	c.serverName = serverName
	c.mu.Unlock()
	return nil
}

func (c *cli) dial(ctx context.Context) (net.Conn, error) {
	c.mu.Lock()
	enabled, cfg, name := c.tlsEnabled, c.tlsConfig, c.serverName
	c.mu.Unlock()

	dialer := &net.Dialer{}
	if !enabled {
		return dialer.DialContext(ctx, c.network, c.address)
	}
	if cfg == nil {
		return nil, ErrInstance
	}
	tlsCfg := cfg.TlsConfig(name)
	tlsDialer := &tls.Dialer{NetDialer: dialer, Config: tlsCfg}
	return tlsDialer.DialContext(ctx, c.network, c.address)
}

// Connect implements libsck.Client.
func (c *cli) Connect(ctx context.Context) error {
	return c.Core.Dial(ctx, c.dial)
}

// Once implements libsck.Client.
func (c *cli) Once(ctx context.Context, req io.Reader, fn libsck.Response) error {
	return c.Core.Once(ctx, req, fn, c.dial)
}
