/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package ferrlisten

import (
	"errors"
	"net"
)

// chanListener implements net.Listener by pulling connections off a
// channel instead of calling accept(2) itself. Each worker owns one;
// the acceptor goroutine feeds connections into it after the listening
// socket's accept loop and any PROXY protocol unwrapping have run.
type chanListener struct {
	addr  net.Addr
	inbox chan net.Conn
	close chan struct{}
}

func newChanListener(addr net.Addr, depth int) *chanListener {
	return &chanListener{
		addr:  addr,
		inbox: make(chan net.Conn, depth),
		close: make(chan struct{}),
	}
}

func (l *chanListener) Accept() (net.Conn, error) {
	select {
	case c, ok := <-l.inbox:
		if !ok {
			return nil, net.ErrClosed
		}
		return c, nil
	case <-l.close:
		return nil, net.ErrClosed
	}
}

func (l *chanListener) Close() error {
	select {
	case <-l.close:
	default:
		close(l.close)
	}
	return nil
}

func (l *chanListener) Addr() net.Addr { return l.addr }

// dispatch hands conn to the worker; it never blocks on a full inbox
// indefinitely as the inbox is sized generously, but a closed listener
// drops the connection rather than leaking a goroutine on a full channel.
func (l *chanListener) dispatch(conn net.Conn) error {
	select {
	case l.inbox <- conn:
		return nil
	case <-l.close:
		return errors.New("chanListener: closed")
	}
}
