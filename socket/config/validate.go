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

package config

import (
	"fmt"
	"net"
	"runtime"

	libptc "github.com/halcyon-net/netcore/network/protocol"
)

// validateAddress resolves addr against network using the stdlib resolver that
// matches the protocol family, returning an error for anything net.Dial/net.Listen
// would itself reject.
func validateAddress(network libptc.NetworkProtocol, addr string) error {
	if runtime.GOOS == "windows" && network.IsUnix() {
		return ErrInvalidProtocol
	}

	switch {
	case network.IsStream() && !network.IsUnix(), network.IsDatagram() && !network.IsUnix():
		// tcp*/udp* families
	case network.IsUnix():
		if addr == "" {
			return fmt.Errorf("%w: empty unix socket path", ErrInvalidProtocol)
		}
		return nil
	default:
		return ErrInvalidProtocol
	}

	if network.IsStream() {
		if _, err := net.ResolveTCPAddr(network.String(), addr); err != nil {
			return err
		}
	} else {
		if _, err := net.ResolveUDPAddr(network.String(), addr); err != nil {
			return err
		}
	}

	return nil
}

// validateGroupPerm checks gid is either -1 (leave group untouched) or a real
// group id up to MaxGID.
func validateGroupPerm(gid int32) error {
	if gid < -1 || gid > MaxGID {
		return ErrInvalidGroup
	}
	return nil
}

// Validate reports whether c describes a usable outbound endpoint.
func (c *Client) Validate() error {
	if err := validateAddress(c.Network, c.Address); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if !c.Network.IsStream() || c.Network.IsUnix() {
			return fmt.Errorf("%w: TLS requires a TCP network", ErrInvalidTLSConfig)
		}
		if len(c.TLS.Config.Certs) == 0 {
			return fmt.Errorf("%w: missing certificate", ErrInvalidTLSConfig)
		}
		if c.TLS.ServerName == "" {
			return fmt.Errorf("%w: missing server name", ErrInvalidTLSConfig)
		}
	}

	return nil
}

// Validate reports whether s describes a usable inbound endpoint.
func (s *Server) Validate() error {
	if err := validateAddress(s.Network, s.Address); err != nil {
		return err
	}

	if err := validateGroupPerm(s.GroupPerm); err != nil {
		return err
	}

	if s.TLS.Enabled {
		if !s.Network.IsStream() || s.Network.IsUnix() {
			return fmt.Errorf("%w: TLS requires a TCP network", ErrInvalidTLSConfig)
		}
		if len(s.TLS.Config.Certs) == 0 {
			return fmt.Errorf("%w: missing certificate", ErrInvalidTLSConfig)
		}
	}

	return nil
}
