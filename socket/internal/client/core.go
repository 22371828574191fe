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

// Package client holds the dial/read/write/close bookkeeping shared by every
// client transport under socket/client (tcp, udp, unix, unixgram). A
// protocol package supplies its own DialFunc (plain net.Dial, or a
// TLS-wrapping one for tcp) and the error to surface when Read/Write/Close
// are called before a connection exists; Core does the rest.
package client

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	libsck "github.com/halcyon-net/netcore/socket"
)

// DialFunc dials the endpoint a Core was built for.
type DialFunc func(ctx context.Context) (net.Conn, error)

// onceReadTimeout bounds how long Once waits for a reply once the request
// has been sent, when ctx carries no deadline of its own.
const onceReadTimeout = 2 * time.Second

type boxErr struct{ fct libsck.FuncError }
type boxInfo struct{ fct libsck.FuncInfo }

// Core is embedded by every protocol-specific client. notConnected is
// returned, unchanged, by Read/Write/Close whenever they are called while
// the client holds no live connection.
type Core struct {
	notConnected error

	mu        sync.Mutex
	conn      net.Conn
	connected atomic.Bool

	onErr  atomic.Value
	onInfo atomic.Value
}

// NewCore builds a Core that reports notConnected for every operation
// attempted before a connection is established.
func NewCore(notConnected error) *Core {
	return &Core{notConnected: notConnected}
}

func (c *Core) RegisterFuncError(fct libsck.FuncError) {
	c.onErr.Store(boxErr{fct})
}

func (c *Core) RegisterFuncInfo(fct libsck.FuncInfo) {
	c.onInfo.Store(boxInfo{fct})
}

func (c *Core) reportErr(errs ...error) {
	var out []error
	for _, e := range errs {
		if e = libsck.ErrorFilter(e); e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return
	}
	if v, ok := c.onErr.Load().(boxErr); ok && v.fct != nil {
		v.fct(out...)
	}
}

func (c *Core) reportInfo(local, remote net.Addr, state libsck.ConnState) {
	if v, ok := c.onInfo.Load().(boxInfo); ok && v.fct != nil {
		v.fct(local, remote, state)
	}
}

// ReportDial lets the owning protocol package report ConnectionDial before
// it calls its DialFunc.
func (c *Core) ReportDial(local, remote net.Addr) {
	c.reportInfo(local, remote, libsck.ConnectionDial)
}

// Conn returns the current underlying connection, or nil.
func (c *Core) Conn() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// SetConn installs conn as the live connection and marks the client
// connected.
func (c *Core) SetConn(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.connected.Store(true)
}

// IsConnected implements libsck.Client.
func (c *Core) IsConnected() bool {
	return c.connected.Load()
}

// teardown drops the current connection, closes it, and reports
// ConnectionClose.
func (c *Core) teardown() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return
	}
	c.connected.Store(false)
	local, remote := conn.LocalAddr(), conn.RemoteAddr()
	_ = conn.Close()
	c.reportInfo(local, remote, libsck.ConnectionClose)
}

// Read implements libsck.Client.
func (c *Core) Read(p []byte) (int, error) {
	conn := c.Conn()
	if conn == nil || !c.connected.Load() {
		c.reportErr(c.notConnected)
		return 0, c.notConnected
	}
	c.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionRead)
	n, err := conn.Read(p)
	if err != nil {
		c.reportErr(err)
		c.teardown()
	}
	return n, err
}

// Write implements libsck.Client.
func (c *Core) Write(p []byte) (int, error) {
	conn := c.Conn()
	if conn == nil || !c.connected.Load() {
		c.reportErr(c.notConnected)
		return 0, c.notConnected
	}
	c.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionWrite)
	n, err := conn.Write(p)
	if err != nil {
		c.reportErr(err)
		c.teardown()
	}
	return n, err
}

// Close implements libsck.Client. It returns notConnected, as Read and
// Write do, when the client is already closed; unlike them it does not pass
// that error to FuncError.
func (c *Core) Close() error {
	conn := c.Conn()
	if conn == nil || !c.connected.Load() {
		return c.notConnected
	}
	c.teardown()
	return nil
}

// Dial runs dial, installs the resulting connection on success, and reports
// the ConnectionDial/error lifecycle around it.
func (c *Core) Dial(ctx context.Context, dial DialFunc) error {
	c.ReportDial(nil, nil)
	conn, err := dial(ctx)
	if err != nil {
		c.reportErr(err)
		return err
	}
	c.SetConn(conn)
	return nil
}

// Once dials if the client is not already connected, writes req in full,
// reads whatever reply arrives within onceReadTimeout (or ctx's own deadline, if
// sooner) and hands it to fn, then closes the connection again if Once is
// the one that opened it.
func (c *Core) Once(ctx context.Context, req io.Reader, fn libsck.Response, dial DialFunc) error {
	selfDialed := false
	if !c.IsConnected() {
		if err := c.Dial(ctx, dial); err != nil {
			return err
		}
		selfDialed = true
	}
	defer func() {
		if selfDialed {
			_ = c.Close()
		}
	}()

	if req != nil {
		if _, err := io.Copy(c, req); err != nil {
			return err
		}
	}

	if fn == nil {
		return nil
	}

	conn := c.Conn()
	if conn == nil {
		return nil
	}

	deadline := time.Now().Add(onceReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var buf bytes.Buffer
	tmp := make([]byte, libsck.DefaultBufferSize)
	for {
		n, err := conn.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			break
		}
	}
	fn(&buf)
	return nil
}
