// This source file is part of the EdgeDB open source project.
//
// Copyright 2020-present EdgeDB Inc. and the EdgeDB authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tessera

import (
	"log"
	"net"

	"github.com/tesseradb/tesseradb-go/internal"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/message"
)

// Connection drives the binary protocol state machine for one network
// connection to the server. It owns the transport, the read/write
// framing, the negotiated protocol version, the server's parameter
// status values, and the two flags -- active and dirty -- that make a
// Sequence an exclusive lease rather than something callers coordinate
// by hand.
//
// A Connection has no internal locking. It is built for a single
// goroutine driving it at a time, matching how a single request/response
// cycle actually needs to run: nothing is concurrent within one
// exchange, so nothing needs a mutex to protect it.
type Connection struct {
	conn net.Conn
	r    *buff.Reader

	version internal.ProtocolVersion
	params  map[string]string

	txState TransactionState

	// active is true for the lifetime of one open Sequence.
	active bool
	// dirty is true whenever the protocol stream is not known to be at
	// a message boundary the server and client agree on. It is set the
	// instant a Sequence starts and cleared only by endClean.
	dirty bool

	log *log.Logger
}

// NewConnection wraps conn in a Connection ready to run Sequences,
// using the protocol version and parameter status values cfg carries
// from the handshake. conn must be a net.Conn (rather than a bare
// io.ReadWriteCloser) because the post-error Sync phase enforces its
// 10-second deadline with SetReadDeadline.
func NewConnection(conn net.Conn, cfg Config) *Connection {
	params := cfg.Params
	if params == nil {
		params = make(map[string]string)
	}

	return &Connection{
		conn:    conn,
		r:       buff.NewReader(conn),
		version: cfg.Version,
		params:  params,
		txState: NotInTransaction,
		log:     log.Default(),
	}
}

// GetVersion returns the protocol version negotiated for this
// connection.
func (c *Connection) GetVersion() internal.ProtocolVersion {
	return c.version
}

// GetParam returns a server parameter status value by name, e.g.
// "server_version" or "system_config", and whether the server sent one.
func (c *Connection) GetParam(name string) (string, bool) {
	val, ok := c.params[name]
	return val, ok
}

// TransactionState reports where the connection currently sits with
// respect to an EdgeQL transaction block. It only ever reflects the
// state carried on the most recently consumed ReadyForCommand message.
func (c *Connection) TransactionState() TransactionState {
	return c.txState
}

// IsConsistent reports whether the connection is at a known message
// boundary and safe to start a new Sequence on. Once false it stays
// false until the connection is discarded and replaced; there is no
// in-band way to resynchronize a connection the err_sync recovery
// itself could not save.
func (c *Connection) IsConsistent() bool {
	return !c.dirty
}

// Terminate sends a Terminate message on a fresh Sequence and expects the
// server to close the connection in response. An EOS while waiting for
// that close is success; any message the server sends instead is a
// protocol violation, since Terminate is defined as a one-way goodbye.
func (c *Connection) Terminate() error {
	s, err := startSequence(c)
	if err != nil {
		return err
	}

	w := buff.NewWriter(make([]byte, 0, 8))
	w.BeginMessage(uint8(message.Terminate))
	w.EndMessage()

	if sendErr := s.sendMessages(w); sendErr != nil {
		_ = c.conn.Close()
		return sendErr
	}

	_, msgErr := s.nextMessage()
	closeErr := c.conn.Close()

	if msgErr == nil {
		return newError(
			ProtocolError,
			"server sent a message instead of closing after Terminate",
		)
	}

	if terr, ok := msgErr.(Error); ok && terr.Category(ClientConnectionEosError) {
		if closeErr != nil {
			return wrapError(ClientConnectionError, "failed to close connection", closeErr)
		}
		return nil
	}
	return msgErr
}

// passiveWait blocks on a single byte read, the only way this core
// notices a server-initiated close while no Sequence is in progress. Any
// outcome -- EOF, an error, or an actual stray byte -- marks the
// connection dirty, since none of those are a state a Sequence can start
// cleanly from. passiveWait returns after that one read, always with an
// error: ProtocolOutOfOrderError for a stray byte, and
// ClientConnectionEosError for any read error.
func (c *Connection) passiveWait() error {
	buf := make([]byte, 1)
	_, err := c.conn.Read(buf)

	c.dirty = true

	if err == nil {
		return newError(ProtocolOutOfOrderError, "unsolicited byte from server during idle wait")
	}
	return wrapError(ClientConnectionEosError, "connection closed during idle wait", err)
}
