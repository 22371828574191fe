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

import "errors"

// ErrBufferFull is returned by Buffer.Append when appending would grow the
// buffer past maxSessionBuffer.
var ErrBufferFull = errors.New("socket: send buffer full")

// Buffer is a growable, append-only byte buffer used by a stream session to
// hold data queued for send. It carries no lock of its own: a session
// serializes access to its own buffers under its own mutex, matching the
// single-writer-at-a-time discipline of the send pipeline.
type Buffer struct {
	data []byte
}

// Append grows b geometrically (doubling capacity whenever p does not fit)
// and copies p onto the end. It returns ErrBufferFull instead of growing
// past maxSessionBuffer.
func (b *Buffer) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	need := len(b.data) + len(p)
	if need > maxSessionBuffer {
		return ErrBufferFull
	}
	b.Reserve(need)
	b.data = append(b.data, p...)
	return nil
}

// Reserve ensures b can hold at least n bytes without reallocating, growing
// capacity geometrically (never shrinking it) when it currently falls
// short.
func (b *Buffer) Reserve(n int) {
	if cap(b.data) >= n {
		return
	}
	grown := cap(b.data) * 2
	if grown < n {
		grown = n
	}
	next := make([]byte, len(b.data), grown)
	copy(next, b.data)
	b.data = next
}

// Reset empties b, retaining its capacity for reuse.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Bytes returns the buffer's current contents. The slice is only valid
// until the next Append, Reserve, or Reset call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes currently held by b.
func (b *Buffer) Len() int {
	return len(b.data)
}
