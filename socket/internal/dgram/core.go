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

package dgram

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	libsck "github.com/halcyon-net/netcore/socket"
)

// Core is the receive-loop shared by every connectionless server (udp,
// unixgram). A single net.PacketConn is shared by every peer; there is no
// per-peer connection to track, so OpenConnections reports 1 while the
// socket is bound and listening, 0 otherwise.
type Core struct {
	handler libsck.HandlerFunc
	updConn libsck.UpdateConn

	mu   sync.Mutex
	conn net.PacketConn

	onErr      atomic.Value
	onInfo     atomic.Value
	onInfoSrv  atomic.Value
	onReceived atomic.Value
	onSent     atomic.Value
	onEmpty    atomic.Value

	running atomic.Bool
	gone    atomic.Bool

	wg sync.WaitGroup
}

type boxErr struct{ fct libsck.FuncError }
type boxInfo struct{ fct libsck.FuncInfo }
type boxInfoSrv struct{ fct libsck.FuncInfoServer }
type boxReceived struct{ fct libsck.FuncReceived }
type boxSent struct{ fct libsck.FuncSent }
type boxEmpty struct{ fct libsck.FuncEmpty }

// NewCore builds a Core around handler; updConn may be nil (there is no
// per-connection net.Conn to customize for a shared packet socket, but the
// signature is kept symmetric with the stream Core).
func NewCore(updConn libsck.UpdateConn, handler libsck.HandlerFunc) *Core {
	c := &Core{handler: handler, updConn: updConn}
	c.gone.Store(true)
	return c
}

func (c *Core) RegisterFuncError(fct libsck.FuncError) {
	c.onErr.Store(boxErr{fct})
}

func (c *Core) RegisterFuncInfo(fct libsck.FuncInfo) {
	c.onInfo.Store(boxInfo{fct})
}

func (c *Core) RegisterFuncInfoServer(fct libsck.FuncInfoServer) {
	c.onInfoSrv.Store(boxInfoSrv{fct})
}

// RegisterFuncReceived implements libsck.Server.
func (c *Core) RegisterFuncReceived(fct libsck.FuncReceived) {
	c.onReceived.Store(boxReceived{fct})
}

// RegisterFuncSent implements libsck.Server.
func (c *Core) RegisterFuncSent(fct libsck.FuncSent) {
	c.onSent.Store(boxSent{fct})
}

// RegisterFuncEmpty implements libsck.Server.
func (c *Core) RegisterFuncEmpty(fct libsck.FuncEmpty) {
	c.onEmpty.Store(boxEmpty{fct})
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

func (c *Core) reportInfoSrv(msg string) {
	if v, ok := c.onInfoSrv.Load().(boxInfoSrv); ok && v.fct != nil {
		v.fct(msg)
	}
}

func (c *Core) reportReceived(local, remote net.Addr, p []byte) {
	if v, ok := c.onReceived.Load().(boxReceived); ok && v.fct != nil {
		v.fct(local, remote, p)
	}
}

func (c *Core) reportSent(local, remote net.Addr, delta, pending int) {
	if v, ok := c.onSent.Load().(boxSent); ok && v.fct != nil {
		v.fct(local, remote, delta, pending)
	}
}

func (c *Core) reportEmpty(local, remote net.Addr) {
	if v, ok := c.onEmpty.Load().(boxEmpty); ok && v.fct != nil {
		v.fct(local, remote)
	}
}

// SetConn installs conn as the socket used by Listen, replacing any
// previous one.
func (c *Core) SetConn(conn net.PacketConn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.gone.Store(false)
}

func (c *Core) packetConn() net.PacketConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Listen implements libsck.Server: it reads datagrams from the registered
// socket until ctx is canceled or the socket is closed, dispatching each to
// handler on its own goroutine.
func (c *Core) Listen(ctx context.Context) error {
	conn := c.packetConn()
	if conn == nil {
		return net.ErrClosed
	}

	c.running.Store(true)
	c.gone.Store(false)
	c.reportInfoSrv("listen: receiving datagrams on " + conn.LocalAddr().String())
	defer func() {
		c.running.Store(false)
		c.reportInfoSrv("listen: receive loop stopped")
	}()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		buf := make([]byte, libsck.DefaultBufferSize)
		n, remote, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if e := libsck.ErrorFilter(err); e != nil {
				c.reportErr(e)
				return err
			}
			return nil
		}

		sess := New(conn, conn.LocalAddr(), remote, buf[:n], c.reportInfo, c.reportReceived, c.reportSent, c.reportEmpty)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			Run(sess, c.handler, c.reportErr)
		}()
	}
}

// Shutdown implements libsck.Server.
func (c *Core) Shutdown(ctx context.Context) error {
	if conn := c.packetConn(); conn != nil {
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.gone.Store(true)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements libsck.Server.
func (c *Core) Close() error {
	var err error
	if conn := c.packetConn(); conn != nil {
		err = conn.Close()
	}
	c.gone.Store(true)
	return libsck.ErrorFilter(err)
}

// Listener implements libsck.Server.
func (c *Core) Listener() (net.Addr, string, error) {
	conn := c.packetConn()
	if conn == nil {
		return nil, "", net.ErrClosed
	}
	return conn.LocalAddr(), conn.LocalAddr().String(), nil
}

// IsRunning implements libsck.Server.
func (c *Core) IsRunning() bool {
	return c.running.Load()
}

// IsGone implements libsck.Server.
func (c *Core) IsGone() bool {
	return c.gone.Load()
}

// OpenConnections implements libsck.Server. A connectionless socket reports
// a single open "connection" while bound and listening.
func (c *Core) OpenConnections() int64 {
	if c.running.Load() {
		return 1
	}
	return 0
}
