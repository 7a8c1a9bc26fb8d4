// File: bridge/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package bridge implements cross-process flow endpoints over TCP
// (spec.md §4.6's "pair of bridge blocks... TCP-like transport"):
// SourceBridge reconstructs buffers/labels/messages arriving on a
// connection into an OutputPort; SinkBridge serializes an InputPort's
// traffic onto a connection. Grounded on the original's
// blocks/network/SocketEndpoint.hpp (openComms/closeComms/recv/send
// shape) and the teacher's internal/transport/transport_linux.go
// (Send/Recv/Close/Features capability split), adapted from raw-fd
// zero-copy I/O to net.Conn: the teacher's non-blocking fd polling exists
// to feed its own epoll reactor (api/reactor.go), which a per-block
// background reader here does not need — net.Conn's own internal netpoll
// integration is the idiomatic equivalent for a single dedicated
// goroutine per bridge block.
package bridge

import (
	"net"

	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/flowerr"
	"github.com/hioload-flow/flowcore/wire"
)

// openComms performs the mutual handshake from SocketEndpoint's
// openComms: both sides write their own H frame then read the peer's.
// Full-duplex TCP makes the write-then-read ordering safe on both ends
// without risk of deadlock.
func openComms(conn net.Conn, dtype buffer.DType) (wire.Handshake, error) {
	if err := wire.WriteHandshake(conn, dtype); err != nil {
		return wire.Handshake{}, flowerr.Proxy("bridge: write handshake failed").WithContext("cause", err.Error())
	}
	peer, err := wire.ReadHandshake(conn)
	if err != nil {
		return wire.Handshake{}, flowerr.Proxy("bridge: read handshake failed").WithContext("cause", err.Error())
	}
	return peer, nil
}
