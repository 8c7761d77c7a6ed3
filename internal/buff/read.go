// This source file is part of the EdgeDB open source project.
//
// Copyright EdgeDB Inc. and the EdgeDB authors.
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

package buff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Reader frames messages directly off of an io.Reader. Unlike a connection
// pool client, this core has exactly one reader and one goroutine driving
// it at a time, so framing is a plain blocking read with no channel
// hand-off.
type Reader struct {
	src io.Reader

	Err     error
	Buf     []byte
	MsgType uint8
}

// NewReader returns a Reader that frames messages read from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// SimpleReader creates a new reader that operates on a single []byte
// already held in memory, e.g. a sub-slice PopSlice carved off.
func SimpleReader(buf []byte) *Reader {
	return &Reader{Buf: buf[:len(buf):len(buf)]}
}

// Next blocks for the next message header and body. It returns false when
// the underlying reader returns an error (including io.EOF), storing that
// error in r.Err. Callers must stop calling Next once it returns false.
//
// Next panics if called on a reader created with SimpleReader.
func (r *Reader) Next() bool {
	if r.src == nil {
		panic("called Next on a simple reader")
	}

	if len(r.Buf) > 0 {
		r.Err = fmt.Errorf(
			"cannot advance: unread data in buffer (message type: 0x%x)",
			r.MsgType,
		)
		return false
	}

	r.MsgType = 0

	header := make([]byte, 5)
	if _, err := io.ReadFull(r.src, header); err != nil {
		r.Err = err
		return false
	}

	r.MsgType = header[0]
	msgLen := int(binary.BigEndian.Uint32(header[1:5])) - 4
	if msgLen < 0 {
		r.Err = fmt.Errorf("negative message length: %v", msgLen)
		return false
	}

	body := make([]byte, msgLen)
	if msgLen > 0 {
		if _, err := io.ReadFull(r.src, body); err != nil {
			r.Err = err
			return false
		}
	}

	r.Buf = body
	return true
}

// Discard skips n bytes.
func (r *Reader) Discard(n int) {
	r.Buf = r.Buf[n:]
}

// DiscardMessage discards all remaining bytes in the current message.
func (r *Reader) DiscardMessage() {
	r.Buf = nil
}

// PopSlice returns a SimpleReader populated with the first n bytes from
// the buffer and discards those bytes from r.
func (r *Reader) PopSlice(n uint32) *Reader {
	s := SimpleReader(r.Buf[:n])
	r.Buf = r.Buf[n:]
	return s
}

// PopUint8 returns the next byte and advances the buffer.
func (r *Reader) PopUint8() uint8 {
	val := r.Buf[0]
	r.Buf = r.Buf[1:]
	return val
}

// PopUint16 reads a uint16 and advances the buffer.
func (r *Reader) PopUint16() uint16 {
	val := binary.BigEndian.Uint16(r.Buf[:2])
	r.Buf = r.Buf[2:]
	return val
}

// PopUint32 reads a uint32 and advances the buffer.
func (r *Reader) PopUint32() uint32 {
	val := binary.BigEndian.Uint32(r.Buf[:4])
	r.Buf = r.Buf[4:]
	return val
}

// PopUint64 reads a uint64 and advances the buffer.
func (r *Reader) PopUint64() uint64 {
	val := binary.BigEndian.Uint64(r.Buf[:8])
	r.Buf = r.Buf[8:]
	return val
}

// PopUUID reads a uuid.UUID and advances the buffer.
func (r *Reader) PopUUID() uuid.UUID {
	var id uuid.UUID
	copy(id[:], r.Buf[:16])
	r.Buf = r.Buf[16:]
	return id
}

// PopBytes reads a []byte and advances the buffer. The returned slice
// aliases the buffer's backing array.
func (r *Reader) PopBytes() []byte {
	n := int(r.PopUint32())
	val := r.Buf[:n]
	r.Buf = r.Buf[n:]
	return val
}

// PopString reads a string and advances the buffer.
func (r *Reader) PopString() string {
	n := int(r.PopUint32())
	val := string(r.Buf[:n])
	r.Buf = r.Buf[n:]
	return val
}
