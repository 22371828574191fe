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

import "errors"

var (
	// ErrInvalidProtocol is returned when the configured network protocol is not
	// a supported dial/listen network, or is not supported by the endpoint kind.
	ErrInvalidProtocol = errors.New("invalid protocol for socket configuration")

	// ErrInvalidTLSConfig is returned when TLS is enabled but the configuration
	// cannot produce a usable *tls.Config (missing certificate, missing server
	// name on the client side, or TLS requested over a transport that does not
	// support it).
	ErrInvalidTLSConfig = errors.New("invalid TLS config for socket configuration")

	// ErrInvalidGroup is returned when GroupPerm falls outside the range accepted
	// by Unix domain socket ownership (-1 meaning "leave the owning group alone").
	ErrInvalidGroup = errors.New("invalid unix group for socket configuration")
)

// MaxGID is the highest group id accepted by GroupPerm.
const MaxGID = 32767
