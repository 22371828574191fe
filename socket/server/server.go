/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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
 *
 */

// Package server dispatches a socket/config.Server configuration to the
// protocol-specific listener it names (tcp, udp, unix, unixgram) and
// performs its bind step, so callers that only know the configuration
// never need to import the protocol packages directly.
package server

import (
	"time"

	libptc "github.com/halcyon-net/netcore/network/protocol"
	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	scktcp "github.com/halcyon-net/netcore/socket/server/tcp"
	sckudp "github.com/halcyon-net/netcore/socket/server/udp"
)

// idleSetter is implemented by protocol servers that support idle session
// reaping (currently tcp and unix).
type idleSetter interface {
	SetIdleTimeout(d time.Duration)
}

// New routes cfg.Network to the matching protocol server, binds cfg.Address
// (and, for Unix networks, applies cfg.PermFile/cfg.GroupPerm), and returns
// the bound, not-yet-listening server. It returns sckcfg.ErrInvalidProtocol
// for any network other than the ones named above.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (libsck.Server, error) {
	switch cfg.Network {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		s := scktcp.NewNetwork(cfg.Network.Code(), upd, handler)
		if cfg.TLS.Enabled {
			if err := s.SetTLS(true, cfg.TLS.Config.New()); err != nil {
				return nil, err
			}
		}
		if is, ok := s.(idleSetter); ok {
			is.SetIdleTimeout(cfg.ConIdleTimeout.Time())
		}
		if err := s.RegisterServer(cfg.Address); err != nil {
			return nil, err
		}
		return s, nil

	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		s, err := sckudp.NewNetwork(cfg.Network.Code(), upd, handler, cfg)
		if err != nil {
			return nil, err
		}
		if err := s.RegisterServer(cfg.Address); err != nil {
			return nil, err
		}
		return s, nil

	case libptc.NetworkUnix:
		return newUnix(upd, handler, cfg)

	case libptc.NetworkUnixGram:
		return newUnixGram(upd, handler, cfg)

	default:
		return nil, sckcfg.ErrInvalidProtocol
	}
}
