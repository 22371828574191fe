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

// Package config holds the declarative configuration consumed by the socket
// server and client endpoints: the dial/listen network and address, Unix
// socket ownership, idle connection reaping and TLS.
package config

import (
	libtls "github.com/halcyon-net/netcore/certificates"
	libdur "github.com/halcyon-net/netcore/duration"
	libprm "github.com/halcyon-net/netcore/file/perm"
	libptc "github.com/halcyon-net/netcore/network/protocol"
)

// TLSClient configures TLS for a Client endpoint.
type TLSClient struct {
	// Enabled switches the connection to crypto/tls.Dial instead of net.Dial.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// Config describes the certificate chain, root CAs, curves, ciphers and
	// version range to use when Enabled is true.
	Config libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`

	// ServerName is sent as the SNI host name and used for peer certificate
	// verification. Required when Enabled is true.
	ServerName string `mapstructure:"serverName" json:"serverName" yaml:"serverName" toml:"serverName"`

	def libtls.TLSConfig
}

// TLSServer configures TLS for a Server endpoint.
type TLSServer struct {
	// Enabled switches the listener to crypto/tls.Listen instead of net.Listen.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// Config describes the certificate chain, client auth mode, curves, ciphers
	// and version range to present when Enabled is true.
	Config libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`

	def libtls.TLSConfig
}

// Client is the configuration of an outbound socket endpoint.
type Client struct {
	// Network is the dial network: tcp/tcp4/tcp6, udp/udp4/udp6, unix or unixgram.
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`

	// Address is passed to net.Dial verbatim (host:port, or a filesystem path
	// for Unix domain sockets).
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// TLS enables and configures TLS for stream-oriented TCP connections.
	TLS TLSClient `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}

// Server is the configuration of an inbound socket endpoint.
type Server struct {
	// Network is the listen network: tcp/tcp4/tcp6, udp/udp4/udp6, unix or unixgram.
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`

	// Address is passed to net.Listen verbatim (host:port, or a filesystem path
	// for Unix domain sockets).
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// PermFile is applied to a Unix domain socket file after it is created.
	// Ignored for every other network.
	PermFile libprm.Perm `mapstructure:"permFile" json:"permFile" yaml:"permFile" toml:"permFile"`

	// GroupPerm is the group id applied to a Unix domain socket file. -1 leaves
	// the group inherited from the creating process untouched.
	GroupPerm int32 `mapstructure:"groupPerm" json:"groupPerm" yaml:"groupPerm" toml:"groupPerm"`

	// ConIdleTimeout, when non-zero, closes a session that has neither sent nor
	// received data for this long. Zero disables idle reaping.
	ConIdleTimeout libdur.Duration `mapstructure:"conIdleTimeout" json:"conIdleTimeout" yaml:"conIdleTimeout" toml:"conIdleTimeout"`

	// TLS enables and configures TLS for stream-oriented TCP connections.
	TLS TLSServer `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}
