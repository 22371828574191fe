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

// Package unix implements libsck.Server over a Unix domain stream socket,
// with file permission and group ownership applied to the socket path.
package unix

import (
	"errors"
	"net"
	"os"
	"sync"

	libprm "github.com/halcyon-net/netcore/file/perm"
	libptc "github.com/halcyon-net/netcore/network/protocol"
	libtls "github.com/halcyon-net/netcore/certificates"
	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	sckstm "github.com/halcyon-net/netcore/socket/internal/stream"
)

// MaxGID is the largest group id accepted by RegisterSocket/New; a 16-bit
// range comfortably covers every gid allocated by a real system.
const MaxGID = 65535

var (
	// ErrInvalidHandler is returned by New when handler is nil.
	ErrInvalidHandler = errors.New("unix: handler must not be nil")

	// ErrInvalidGroup is returned by New or RegisterSocket when the group id
	// falls outside -1..MaxGID.
	ErrInvalidGroup = errors.New("unix: invalid group id")

	// ErrInvalidNetwork is returned by New when cfg.Network is not NetworkUnix.
	ErrInvalidNetwork = errors.New("unix: network must be unix")
)

// ServerUnix is a libsck.Server bound to a Unix domain stream socket.
type ServerUnix interface {
	libsck.Server

	// RegisterSocket binds path as the listener used by Listen, applying
	// perm and, when gid != -1, chowning the socket file to that group.
	RegisterSocket(path string, perm libprm.Perm, gid int32) error

	// SetTLS always returns nil: Unix domain sockets never negotiate TLS.
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

	mu  sync.Mutex
	cfg sckcfg.Server
}

// New validates cfg and constructs a Unix domain stream server around
// handler. It does not bind a socket file; call RegisterSocket (or pass a
// non-empty cfg.Address and call RegisterSocket with it) before Listen.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUnix, error) {
	if handler == nil {
		return nil, ErrInvalidHandler
	}
	if cfg.Network != libptc.NetworkUnix {
		return nil, ErrInvalidNetwork
	}
	if cfg.GroupPerm < -1 || cfg.GroupPerm > MaxGID {
		return nil, ErrInvalidGroup
	}

	s := &srv{
		Core: sckstm.NewCore(upd, handler),
		cfg:  cfg,
	}
	return s, nil
}

func (s *srv) SetTLS(bool, libtls.TLSConfig) error {
	return nil
}

func (s *srv) RegisterSocket(path string, perm libprm.Perm, gid int32) error {
	if gid < -1 || gid > MaxGID {
		return ErrInvalidGroup
	}

	_ = os.Remove(path)

	addr, err := net.ResolveUnixAddr(libptc.NetworkUnix.Code(), path)
	if err != nil {
		return err
	}

	ln, err := net.ListenUnix(libptc.NetworkUnix.Code(), addr)
	if err != nil {
		return err
	}

	if perm != 0 {
		if err := os.Chmod(path, perm.FileMode()); err != nil {
			_ = ln.Close()
			return err
		}
	}
	if gid != -1 {
		if err := os.Chown(path, -1, int(gid)); err != nil {
			_ = ln.Close()
			return err
		}
	}

	s.mu.Lock()
	s.cfg.Address = path
	idle := s.cfg.ConIdleTimeout.Time()
	s.mu.Unlock()

	s.Core.SetListener(ln, idle)
	return nil
}
