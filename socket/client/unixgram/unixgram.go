//go:build linux || darwin

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

// Package unixgram dials a Unix domain datagram socket on behalf of
// socket/client.
package unixgram

import (
	"context"
	"errors"
	"io"
	"net"

	libtls "github.com/halcyon-net/netcore/certificates"
	libsck "github.com/halcyon-net/netcore/socket"
	sckclc "github.com/halcyon-net/netcore/socket/internal/client"
)

// ErrConnection is returned by Read, Write and Close when called while the
// client holds no live connection.
var ErrConnection = errors.New("unixgram client: not connected")

// ClientUnix is a socket/client dialer over a Unix domain datagram socket.
type ClientUnix interface {
	libsck.Client

	// SetTLS always returns nil: a Unix domain socket never negotiates TLS.
	SetTLS(enabled bool, cfg libtls.TLSConfig, serverName string) error
}

type cli struct {
	*sckclc.Core

	path string
}

// New returns a client that dials socketPath on Connect or Once, or nil if
// socketPath is empty. A path that is merely missing or unusable is not
// validated up front; it surfaces as a dial error at Connect/Once time.
func New(socketPath string) ClientUnix {
	if socketPath == "" {
		return nil
	}
	return &cli{
		Core: sckclc.NewCore(ErrConnection),
		path: socketPath,
	}
}

// SetTLS implements ClientUnix. It always returns nil: filesystem
// permissions, not TLS, secure a Unix domain socket.
func (c *cli) SetTLS(bool, libtls.TLSConfig, string) error {
	return nil
}

func (c *cli) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{}
	return dialer.DialContext(ctx, "unixgram", c.path)
}

// Connect implements libsck.Client.
func (c *cli) Connect(ctx context.Context) error {
	return c.Core.Dial(ctx, c.dial)
}

// Once implements libsck.Client.
func (c *cli) Once(ctx context.Context, req io.Reader, fn libsck.Response) error {
	return c.Core.Once(ctx, req, fn, c.dial)
}
