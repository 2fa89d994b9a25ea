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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// PROXY protocol v1 is a text line, "PROXY <INET> <src> <dst> <srcport> <dstport>\r\n",
// never longer than 107 bytes including the terminator.
const proxyV1MaxLength = 107

// proxyV2Sig is the fixed 12-byte signature that opens every v2 header.
var proxyV2Sig = [12]byte{0x0D, 0x0A, 0x0D, 0x0A, 0x00, 0x0D, 0x0A, 0x51, 0x55, 0x49, 0x54, 0x0A}

// proxyV2HeaderLen is the signature plus the ver/cmd and fam/proto bytes and
// the big-endian address-block length at offset 14; the minimum full v2
// message (LOCAL command, empty address block) is this many bytes.
const proxyV2HeaderLen = 16

const (
	proxyV2CmdLocal = 0x0
	proxyV2CmdProxy = 0x1

	proxyV2FamUnspec = 0x0
	proxyV2FamInet   = 0x1
	proxyV2FamInet6  = 0x2
	proxyV2FamUnix   = 0x3
)

// proxiedAddr carries the original client/destination addresses recovered
// from a PROXY protocol header.
type proxiedAddr struct {
	src net.Addr
	dst net.Addr
}

// unwrapProxyProtocol reads a PROXY v1 or v2 header off conn, if present,
// and returns a net.Conn whose RemoteAddr/LocalAddr report the original
// endpoints. Any bytes buffered past the header are replayed to the
// returned conn's first reads, so no application data is lost.
func unwrapProxyProtocol(conn net.Conn) (net.Conn, error) {
	br := bufio.NewReaderSize(conn, proxyV1MaxLength)

	peek, err := br.Peek(12)
	if err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}

	var addr *proxiedAddr
	if [12]byte(peek) == proxyV2Sig {
		addr, err = parseProxyV2(br)
	} else if strings.HasPrefix(string(peek), "PROXY ") {
		addr, err = parseProxyV1(br)
	} else {
		return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("no PROXY protocol signature found"))
	}
	if err != nil {
		return nil, err
	}

	return &bufferedAddrConn{Conn: conn, r: br, addr: addr}, nil
}

func parseProxyV1(br *bufio.Reader) (*proxiedAddr, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}
	if len(line) > proxyV1MaxLength {
		return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("v1 header exceeds %d bytes", proxyV1MaxLength))
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "PROXY" {
		return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("malformed v1 header %q", line))
	}
	if fields[1] == "UNKNOWN" {
		return &proxiedAddr{}, nil
	}
	if len(fields) != 6 {
		return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("malformed v1 header %q", line))
	}

	proto := fields[1]
	srcIP, dstIP, srcPort, dstPort := fields[2], fields[3], fields[4], fields[5]
	if proto != "TCP4" && proto != "TCP6" {
		return nil, ErrorProxyProtocolUnsupported.Error(fmt.Errorf("unsupported v1 family %q", proto))
	}

	sp, err := strconv.Atoi(srcPort)
	if err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}
	dp, err := strconv.Atoi(dstPort)
	if err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}

	return &proxiedAddr{
		src: &net.TCPAddr{IP: net.ParseIP(srcIP), Port: sp},
		dst: &net.TCPAddr{IP: net.ParseIP(dstIP), Port: dp},
	}, nil
}

func parseProxyV2(br *bufio.Reader) (*proxiedAddr, error) {
	header, err := br.Peek(proxyV2HeaderLen)
	if err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}

	verCmd := header[12]
	famProto := header[13]
	length := binary.BigEndian.Uint16(header[14:16])

	if verCmd>>4 != 0x2 {
		return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("unsupported PROXY protocol version %d", verCmd>>4))
	}
	cmd := verCmd & 0x0F
	fam := famProto >> 4

	if _, err = br.Discard(proxyV2HeaderLen); err != nil {
		return nil, ErrorProxyProtocolMalformed.Error(err)
	}

	addrBlock := make([]byte, length)
	if length > 0 {
		if _, err = io.ReadFull(br, addrBlock); err != nil {
			return nil, ErrorProxyProtocolMalformed.Error(err)
		}
	}

	if cmd == proxyV2CmdLocal {
		return &proxiedAddr{}, nil
	}
	if fam == proxyV2FamUnix {
		return nil, ErrorProxyProtocolUnsupported.Error(fmt.Errorf("unix-socket addresses are rejected in PROXY v2"))
	}

	switch fam {
	case proxyV2FamInet:
		if len(addrBlock) < 12 {
			return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("truncated v2 IPv4 address block"))
		}
		srcIP := net.IP(addrBlock[0:4])
		dstIP := net.IP(addrBlock[4:8])
		srcPort := binary.BigEndian.Uint16(addrBlock[8:10])
		dstPort := binary.BigEndian.Uint16(addrBlock[10:12])
		return &proxiedAddr{
			src: &net.TCPAddr{IP: srcIP, Port: int(srcPort)},
			dst: &net.TCPAddr{IP: dstIP, Port: int(dstPort)},
		}, nil
	case proxyV2FamInet6:
		if len(addrBlock) < 36 {
			return nil, ErrorProxyProtocolMalformed.Error(fmt.Errorf("truncated v2 IPv6 address block"))
		}
		srcIP := net.IP(addrBlock[0:16])
		dstIP := net.IP(addrBlock[16:32])
		srcPort := binary.BigEndian.Uint16(addrBlock[32:34])
		dstPort := binary.BigEndian.Uint16(addrBlock[34:36])
		return &proxiedAddr{
			src: &net.TCPAddr{IP: srcIP, Port: int(srcPort)},
			dst: &net.TCPAddr{IP: dstIP, Port: int(dstPort)},
		}, nil
	case proxyV2FamUnspec:
		return &proxiedAddr{}, nil
	default:
		return nil, ErrorProxyProtocolUnsupported.Error(fmt.Errorf("unsupported v2 family %d", fam))
	}
}

// bufferedAddrConn layers a PROXY-protocol-parsed address over the
// remainder of a connection whose header bytes were already consumed from
// r's underlying buffer.
type bufferedAddrConn struct {
	net.Conn
	r    *bufio.Reader
	addr *proxiedAddr
}

func (c *bufferedAddrConn) Read(p []byte) (int, error) { return c.r.Read(p) }

func (c *bufferedAddrConn) RemoteAddr() net.Addr {
	if c.addr != nil && c.addr.src != nil {
		return c.addr.src
	}
	return c.Conn.RemoteAddr()
}

func (c *bufferedAddrConn) LocalAddr() net.Addr {
	if c.addr != nil && c.addr.dst != nil {
		return c.addr.dst
	}
	return c.Conn.LocalAddr()
}
