/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package protocol

// String returns the net-package dial/listen string for p, or "" if p is not a known protocol.
func (n NetworkProtocol) String() string {
	return networkNames[n]
}

// Code is an alias of String kept for symmetry with other enums in this module family.
func (n NetworkProtocol) Code() string {
	return n.String()
}

// Int returns the numeric value of p, or 0 if p is not a known protocol.
func (n NetworkProtocol) Int() int {
	if _, ok := networkNames[n]; !ok {
		return 0
	}
	return int(n)
}

// Int64 is the int64 variant of Int.
func (n NetworkProtocol) Int64() int64 {
	return int64(n.Int())
}

// Uint returns the numeric value of p, or 0 if p is not a known protocol.
func (n NetworkProtocol) Uint() uint {
	return uint(n.Int())
}

// Uint64 is the uint64 variant of Uint.
func (n NetworkProtocol) Uint64() uint64 {
	return uint64(n.Int())
}
