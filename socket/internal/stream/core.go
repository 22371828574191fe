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

package stream

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	libsck "github.com/halcyon-net/netcore/socket"
)

// PrepareFunc runs once per accepted connection, before a Session exists
// for it, and may wrap conn (TLS termination) or reject it outright
// (handshake failure). Returning an error drops the connection without
// ever creating a session or invoking the handler.
type PrepareFunc func(conn net.Conn) (net.Conn, error)

// Core is the accept-loop and session bookkeeping shared by every
// connection-oriented server (tcp, unix). Protocol packages embed it and
// contribute their own construction (net.Listen vs net.ListenUnix), TLS and
// socket-file ownership handling.
type Core struct {
	handler libsck.HandlerFunc
	updConn libsck.UpdateConn
	prepare PrepareFunc

	mu          sync.Mutex
	ln          net.Listener
	idleTimeout time.Duration

	onErr      atomic.Value // libsck.FuncError
	onInfo     atomic.Value // libsck.FuncInfo
	onInfoSrv  atomic.Value // libsck.FuncInfoServer
	onReceived atomic.Value // libsck.FuncReceived
	onSent     atomic.Value // libsck.FuncSent
	onEmpty    atomic.Value // libsck.FuncEmpty

	running atomic.Bool
	gone    atomic.Bool

	sessions sync.Map // *Session -> struct{}
	count    atomic.Int64
	wg       sync.WaitGroup
}

// NewCore builds a Core around handler; updConn may be nil.
func NewCore(updConn libsck.UpdateConn, handler libsck.HandlerFunc) *Core {
	c := &Core{handler: handler, updConn: updConn}
	c.gone.Store(true)
	return c
}

// RegisterFuncError implements libsck.Server.
func (c *Core) RegisterFuncError(fct libsck.FuncError) {
	c.onErr.Store(boxErr{fct})
}

// RegisterFuncInfo implements libsck.Server.
func (c *Core) RegisterFuncInfo(fct libsck.FuncInfo) {
	c.onInfo.Store(boxInfo{fct})
}

// RegisterFuncInfoServer implements libsck.Server.
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

// boxErr/boxInfo/boxInfoSrv/boxReceived/boxSent/boxEmpty let a nil function
// value be stored in an atomic.Value, which otherwise rejects a nil
// interface.
type boxErr struct{ fct libsck.FuncError }
type boxInfo struct{ fct libsck.FuncInfo }
type boxInfoSrv struct{ fct libsck.FuncInfoServer }
type boxReceived struct{ fct libsck.FuncReceived }
type boxSent struct{ fct libsck.FuncSent }
type boxEmpty struct{ fct libsck.FuncEmpty }

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

// SetPrepareConn installs fn as the per-connection preparation step run
// immediately after Accept and before a Session is created, replacing any
// previously installed one. Passing nil disables preparation (the plain
// accepted connection is used as-is), which is the default.
func (c *Core) SetPrepareConn(fn PrepareFunc) {
	c.mu.Lock()
	c.prepare = fn
	c.mu.Unlock()
}

func (c *Core) prepareConn() PrepareFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepare
}

// SetListener installs ln as the listener used by Listen, and the idle
// timeout applied to every session accepted from it. Replacing the listener
// of a server that is not currently running is how RegisterServer/
// RegisterSocket (re-)binds a protocol-specific server.
func (c *Core) SetListener(ln net.Listener, idleTimeout time.Duration) {
	c.mu.Lock()
	c.ln = ln
	c.idleTimeout = idleTimeout
	c.mu.Unlock()
	c.gone.Store(false)
}

func (c *Core) listener() net.Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ln
}

// Listen implements libsck.Server. It accepts connections from the
// currently registered listener until ctx is canceled or the listener is
// closed, dispatching each to handler on its own goroutine.
func (c *Core) Listen(ctx context.Context) error {
	ln := c.listener()
	if ln == nil {
		return net.ErrClosed
	}

	c.running.Store(true)
	c.gone.Store(false)
	c.reportInfoSrv("listen: accepting connections on " + ln.Addr().String())
	defer func() {
		c.running.Store(false)
		c.reportInfoSrv("listen: accept loop stopped")
	}()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		conn, err := ln.Accept()
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

		if c.updConn != nil {
			c.updConn(conn)
		}

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()

			if prepare := c.prepareConn(); prepare != nil {
				local, remote := conn.LocalAddr(), conn.RemoteAddr()
				c.reportInfo(local, remote, libsck.ConnectionHandshake)
				prepared, perr := prepare(conn)
				if perr != nil {
					c.reportErr(libsck.ErrNotConnected)
					_ = conn.Close()
					c.reportInfo(local, remote, libsck.ConnectionClose)
					return
				}
				conn = prepared
				c.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionHandshaked)
			}

			sess := New(conn, c.idleTimeout, c.reportInfo, c.reportReceived, c.reportSent, c.reportEmpty)
			c.sessions.Store(sess, struct{}{})
			c.count.Add(1)
			defer func() {
				c.sessions.Delete(sess)
				c.count.Add(-1)
			}()
			Run(ctx, sess, c.handler, c.reportErr)
		}()
	}
}

// Shutdown implements libsck.Server: stops accepting new connections and
// waits for in-flight sessions to finish, or for ctx to expire first.
func (c *Core) Shutdown(ctx context.Context) error {
	if ln := c.listener(); ln != nil {
		_ = ln.Close()
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

// Close implements libsck.Server: immediately tears down the listener and
// every open session without waiting for handlers to return on their own.
func (c *Core) Close() error {
	var err error
	if ln := c.listener(); ln != nil {
		err = ln.Close()
	}
	c.sessions.Range(func(k, _ interface{}) bool {
		_ = k.(*Session).Close()
		return true
	})
	c.gone.Store(true)
	return libsck.ErrorFilter(err)
}

// Listener implements libsck.Server.
func (c *Core) Listener() (net.Addr, string, error) {
	ln := c.listener()
	if ln == nil {
		return nil, "", net.ErrClosed
	}
	return ln.Addr(), ln.Addr().String(), nil
}

// IsRunning implements libsck.Server.
func (c *Core) IsRunning() bool {
	return c.running.Load()
}

// IsGone implements libsck.Server.
func (c *Core) IsGone() bool {
	return c.gone.Load()
}

// OpenConnections implements libsck.Server.
func (c *Core) OpenConnections() int64 {
	return c.count.Load()
}

// snapshotSessions copies the current session registry into a slice so a
// caller can send to every session without holding sessions' internal
// iteration state across each per-session Write.
func (c *Core) snapshotSessions() []*Session {
	out := make([]*Session, 0, c.count.Load())
	c.sessions.Range(func(k, _ interface{}) bool {
		out = append(out, k.(*Session))
		return true
	})
	return out
}

// Multicast sends p to every currently registered session without waiting
// for any of them to finish: each session's Write is issued on its own
// goroutine, so one slow or blocked peer never delays delivery to the
// others.
func (c *Core) Multicast(p []byte) {
	for _, sess := range c.snapshotSessions() {
		sess := sess
		go func() { _, _ = sess.Write(p) }()
	}
}

// MulticastSync sends p to every currently registered session, one at a
// time, and reports how many accepted the write along with the first error
// encountered.
func (c *Core) MulticastSync(p []byte) (int, error) {
	var (
		sent  int
		first error
	)
	for _, sess := range c.snapshotSessions() {
		if _, err := sess.Write(p); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		sent++
	}
	return sent, first
}
