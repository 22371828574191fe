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

// Package client dispatches a socket/config.Client configuration to the
// protocol-specific dialer it names (tcp, udp, unix, unixgram), so callers
// that only know the configuration never need to import the protocol
// packages directly.
package client

import (
	libptc "github.com/halcyon-net/netcore/network/protocol"
	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	scktcp "github.com/halcyon-net/netcore/socket/client/tcp"
	sckudp "github.com/halcyon-net/netcore/socket/client/udp"
)

// New routes cfg.Network to the matching protocol dialer. It returns
// sckcfg.ErrInvalidProtocol for any network other than tcp/tcp4/tcp6,
// udp/udp4/udp6, unix or unixgram (or for unix/unixgram on a platform that
// does not support them). upd is accepted for symmetry with socket/server's
// dispatcher; a dialed net.Conn has no accept-time hook to run it through, so
// it is currently unused.
func New(cfg sckcfg.Client, upd libsck.UpdateConn) (libsck.Client, error) {
	switch cfg.Network {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		cli, err := scktcp.NewNetwork(cfg.Network.Code(), cfg.Address)
		if err != nil {
			return nil, err
		}
		if cfg.TLS.Enabled {
			if err := cli.SetTLS(true, cfg.TLS.Config.New(), cfg.TLS.ServerName); err != nil {
				return nil, err
			}
		}
		return cli, nil

	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		return sckudp.NewNetwork(cfg.Network.Code(), cfg.Address)

	case libptc.NetworkUnix:
		return newUnix(cfg.Address)

	case libptc.NetworkUnixGram:
		return newUnixGram(cfg.Address)

	default:
		return nil, sckcfg.ErrInvalidProtocol
	}
}
