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
	libtls "github.com/halcyon-net/netcore/certificates"
)

// DefaultTLS registers a fallback TLS configuration merged under whatever
// fields s.TLS.Config sets explicitly. Passing nil clears the fallback.
func (s *Server) DefaultTLS(def libtls.TLSConfig) {
	s.TLS.def = def
}

// GetTLS reports whether TLS is enabled and, if so, returns the TLSConfig
// obtained by layering s.TLS.Config over the fallback set via DefaultTLS.
func (s *Server) GetTLS() (bool, libtls.TLSConfig) {
	if !s.TLS.Enabled {
		return false, nil
	}

	cfg := s.TLS.Config
	return true, cfg.NewFrom(s.TLS.def)
}

// DefaultTLS registers a fallback TLS configuration merged under whatever
// fields c.TLS.Config sets explicitly. Passing nil clears the fallback.
func (c *Client) DefaultTLS(def libtls.TLSConfig) {
	c.TLS.def = def
}

// GetTLS reports whether TLS is enabled and, if so, returns the TLSConfig and
// the server name to use for SNI/verification.
func (c *Client) GetTLS() (bool, libtls.TLSConfig, string) {
	if !c.TLS.Enabled {
		return false, nil, ""
	}

	cfg := c.TLS.Config
	return true, cfg.NewFrom(c.TLS.def), c.TLS.ServerName
}
