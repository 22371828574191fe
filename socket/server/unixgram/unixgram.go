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

// Package unixgram implements libsck.Server over a Unix domain datagram
// socket, with file permission and group ownership applied to the socket
// path.
package unixgram

import (
	"errors"
	"net"
	"os"
	"sync"

	libprm "github.com/halcyon-net/netcore/file/perm"
	libptc "github.com/halcyon-net/netcore/network/protocol"
	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	sckdgr "github.com/halcyon-net/netcore/socket/internal/dgram"
)

// MaxGID is the largest group id accepted by RegisterSocket/New; a 16-bit
// range comfortably covers every gid allocated by a real system.
const MaxGID = 65535

var (
	// ErrInvalidHandler is returned by New when handler is nil.
	ErrInvalidHandler = errors.New("unixgram: handler must not be nil")

	// ErrInvalidGroup is returned by New or RegisterSocket when the group id
	// falls outside -1..MaxGID.
	ErrInvalidGroup = errors.New("unixgram: invalid group id")

	// ErrInvalidNetwork is returned by New when cfg.Network is not
	// NetworkUnixGram.
	ErrInvalidNetwork = errors.New("unixgram: network must be unixgram")
)

// ServerUnixGram is a libsck.Server bound to a Unix domain datagram socket.
type ServerUnixGram interface {
	libsck.Server

	// RegisterSocket binds path as the socket used by Listen, applying perm
	// and, when gid != -1, chowning the socket file to that group.
	RegisterSocket(path string, perm libprm.Perm, gid int32) error
}

type srv struct {
	*sckdgr.Core

	mu  sync.Mutex
	cfg sckcfg.Server
}

// New validates cfg and constructs a Unix domain datagram server around
// handler. It does not bind a socket file; call RegisterSocket (or pass a
// non-empty cfg.Address and call RegisterSocket with it) before Listen.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUnixGram, error) {
	if handler == nil {
		return nil, ErrInvalidHandler
	}
	if cfg.Network != libptc.NetworkUnixGram {
		return nil, ErrInvalidNetwork
	}
	if cfg.GroupPerm < -1 || cfg.GroupPerm > MaxGID {
		return nil, ErrInvalidGroup
	}

	s := &srv{
		Core: sckdgr.NewCore(upd, handler),
		cfg:  cfg,
	}
	return s, nil
}

func (s *srv) RegisterSocket(path string, perm libprm.Perm, gid int32) error {
	if gid < -1 || gid > MaxGID {
		return ErrInvalidGroup
	}

	_ = os.Remove(path)

	addr, err := net.ResolveUnixAddr(libptc.NetworkUnixGram.Code(), path)
	if err != nil {
		return err
	}

	conn, err := net.ListenUnixgram(libptc.NetworkUnixGram.Code(), addr)
	if err != nil {
		return err
	}

	if perm != 0 {
		if err := os.Chmod(path, perm.FileMode()); err != nil {
			_ = conn.Close()
			return err
		}
	}
	if gid != -1 {
		if err := os.Chown(path, -1, int(gid)); err != nil {
			_ = conn.Close()
			return err
		}
	}

	s.mu.Lock()
	s.cfg.Address = path
	s.mu.Unlock()

	s.Core.SetConn(conn)
	return nil
}
