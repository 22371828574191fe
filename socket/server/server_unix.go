//go:build linux || darwin

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

package server

import (
	libsck "github.com/halcyon-net/netcore/socket"
	sckcfg "github.com/halcyon-net/netcore/socket/config"
	sckuds "github.com/halcyon-net/netcore/socket/server/unix"
	sckudg "github.com/halcyon-net/netcore/socket/server/unixgram"
)

func newUnix(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (libsck.Server, error) {
	s, err := sckuds.New(upd, handler, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterSocket(cfg.Address, cfg.PermFile, cfg.GroupPerm); err != nil {
		return nil, err
	}
	return s, nil
}

func newUnixGram(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (libsck.Server, error) {
	s, err := sckudg.New(upd, handler, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterSocket(cfg.Address, cfg.PermFile, cfg.GroupPerm); err != nil {
		return nil, err
	}
	return s, nil
}
