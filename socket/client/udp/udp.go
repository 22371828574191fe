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

// Package udp dials a UDP endpoint on behalf of socket/client. net.Dial on a
// UDP network returns a connected net.Conn bound to a single peer, so a UDP
// client needs no packet-level plumbing of its own.
package udp

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"

	libsck "github.com/halcyon-net/netcore/socket"
	sckclc "github.com/halcyon-net/netcore/socket/internal/client"
)

var (
	// ErrInstance is kept for parity with the other client transports.
	ErrInstance = errors.New("udp client: invalid instance")

	// ErrConnection is returned by Read, Write and Close when called while
	// the client holds no live connection.
	ErrConnection = errors.New("udp client: not connected")

	// ErrAddress is returned by New when address is not a valid host:port.
	ErrAddress = errors.New("udp client: invalid address")
)

// ClientUDP is a socket/client dialer over a connected UDP socket.
type ClientUDP interface {
	libsck.Client
}

type cli struct {
	*sckclc.Core

	network string
	address string
}

// New validates address as a host:port pair and returns a client ready to
// Connect or Once against it over plain UDP.
func New(address string) (ClientUDP, error) {
	return NewNetwork("udp", address)
}

// NewNetwork is New pinned to a specific UDP variant ("udp", "udp4", "udp6").
func NewNetwork(network, address string) (ClientUDP, error) {
	if address == "" {
		return nil, ErrAddress
	}
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
		return nil, ErrAddress
	}

	return &cli{
		Core:    sckclc.NewCore(ErrConnection),
		network: network,
		address: address,
	}, nil
}

func (c *cli) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{}
	return dialer.DialContext(ctx, c.network, c.address)
}

// Connect implements libsck.Client.
func (c *cli) Connect(ctx context.Context) error {
	return c.Core.Dial(ctx, c.dial)
}

// Once implements libsck.Client.
func (c *cli) Once(ctx context.Context, req io.Reader, fn libsck.Response) error {
	return c.Core.Once(ctx, req, fn, c.dial)
}
