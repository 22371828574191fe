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

package socket

// ConnState identifies a step in the lifecycle of a single session, reported
// through FuncInfo. A server session reports New, then Handler, then Read and
// Write each time the handler calls them, CloseRead or CloseWrite when a read
// or write fails, and Close last; a client reports Dial before dialing.
type ConnState uint8

const (
	// ConnectionDial is reported by a client immediately before dialing.
	ConnectionDial ConnState = iota
	// ConnectionNew is reported by a server immediately after accepting.
	ConnectionNew
	// ConnectionRead is reported before a session performs a blocking read.
	ConnectionRead
	// ConnectionCloseRead is reported once a session stops reading.
	ConnectionCloseRead
	// ConnectionHandler is reported immediately before invoking HandlerFunc.
	ConnectionHandler
	// ConnectionWrite is reported before a session performs a blocking write.
	ConnectionWrite
	// ConnectionCloseWrite is reported once a session stops writing.
	ConnectionCloseWrite
	// ConnectionClose is reported once the underlying connection is closed.
	ConnectionClose
	// ConnectionHandshake is reported by a TLS-enabled server immediately
	// before it starts the TLS handshake on an accepted connection, ahead
	// of ConnectionNew and any Read.
	ConnectionHandshake
	// ConnectionHandshaked is reported once that handshake succeeds. It is
	// never reported when the handshake fails; ConnectionClose follows
	// directly instead.
	ConnectionHandshaked
)

var connStateNames = map[ConnState]string{
	ConnectionDial:       "Dial Connection",
	ConnectionNew:        "New Connection",
	ConnectionRead:       "Read Incoming Stream",
	ConnectionCloseRead:  "Close Incoming Stream",
	ConnectionHandler:    "Run HandlerFunc",
	ConnectionWrite:      "Write Outgoing Steam",
	ConnectionCloseWrite: "Close Outgoing Stream",
	ConnectionClose:      "Close Connection",
	ConnectionHandshake:  "Start TLS Handshake",
	ConnectionHandshaked: "Complete TLS Handshake",
}

// String returns the human-readable label of s, or "unknown connection
// state" for any value outside the declared enumeration.
func (s ConnState) String() string {
	if n, ok := connStateNames[s]; ok {
		return n
	}
	return "unknown connection state"
}
