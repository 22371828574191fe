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

// Package udp implements libsck.Server over a UDP/UDP4/UDP6 socket.
package udp

import (
	"errors"
	"net"
	"sync"

	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	sckdgr "github.com/halcyon-net/netcore/socket/internal/dgram"
)

var (
	// ErrInvalidHandler is returned by New when handler is nil.
	ErrInvalidHandler = errors.New("udp: handler must not be nil")

	// ErrInvalidAddress is returned by New or RegisterServer when the address
	// is empty.
	ErrInvalidAddress = errors.New("udp: invalid address")
)

// ServerUdp is a libsck.Server bound to a UDP socket.
type ServerUdp interface {
	libsck.Server

	// RegisterServer binds address (host:port) as the socket used by
	// Listen, replacing any previous binding.
	RegisterServer(address string) error
}

type srv struct {
	*sckdgr.Core

	mu      sync.Mutex
	network string
}

// New checks that cfg.Address is non-empty and resolves as a UDP address,
// then constructs a UDP server around handler; upd may be nil. It does not
// bind a socket; call RegisterServer (for instance with cfg.Address) before
// Listen.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUdp, error) {
	if handler == nil {
		return nil, ErrInvalidHandler
	}

	network := cfg.Network.Code()
	if network == "" {
		network = "udp"
	}
	if cfg.Address == "" {
		return nil, ErrInvalidAddress
	}
	if _, err := net.ResolveUDPAddr(network, cfg.Address); err != nil {
		return nil, err
	}

	return &srv{
		Core:    sckdgr.NewCore(upd, handler),
		network: network,
	}, nil
}

// NewNetwork is like New but pins the listen network explicitly ("udp4",
// "udp6"), used by the socket/server dispatcher.
func NewNetwork(network string, upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUdp, error) {
	s, err := New(upd, handler, cfg)
	if err != nil {
		return nil, err
	}
	if network != "" {
		s.(*srv).network = network
	}
	return s, nil
}

func (s *srv) RegisterServer(address string) error {
	if address == "" {
		return ErrInvalidAddress
	}

	s.mu.Lock()
	network := s.network
	s.mu.Unlock()

	addr, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		return err
	}

	conn, err := net.ListenUDP(network, addr)
	if err != nil {
		return err
	}

	s.Core.SetConn(conn)
	return nil
}
