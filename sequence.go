package tessera

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/message"
)

// errSyncTimeout bounds how long a Sequence waits for the ReadyForCommand
// that follows a recovery Sync. Every other read in this core blocks
// indefinitely; this is the one place a hung server cannot wedge a
// caller forever.
const errSyncTimeout = 10 * time.Second

// Sequence is an exclusive lease on a Connection for the span of one
// request/response exchange. Only one Sequence may be open on a
// Connection at a time: starting a second one, or letting one end
// without calling endClean, leaves the connection unusable until it is
// replaced.
type Sequence struct {
	conn *Connection
}

// startSequence opens a Sequence on conn, failing immediately if the
// connection already has a Sequence active or is dirty from a previous
// one that did not end cleanly.
func startSequence(conn *Connection) (*Sequence, error) {
	if conn.active {
		return nil, newError(
			ClientInconsistentError,
			"connection already has a sequence in progress",
		)
	}
	if conn.dirty {
		return nil, newError(
			ClientInconsistentError,
			"connection is in an inconsistent state",
		)
	}

	conn.active = true
	conn.dirty = true
	return &Sequence{conn: conn}, nil
}

// endClean marks the exchange as finished at a message boundary both
// sides agree on. It must be the last call a Sequence makes before being
// dropped; a Sequence dropped without it leaves the connection dirty.
func (s *Sequence) endClean() {
	s.conn.active = false
	s.conn.dirty = false
}

// sendMessages flushes w to the connection's transport. A failure here
// always leaves the connection dirty: there is no way to know how much
// of w's contents actually reached the server.
func (s *Sequence) sendMessages(w *buff.Writer) error {
	if err := w.Send(s.conn.conn); err != nil {
		return wrapError(ClientConnectionError, "failed to send message", err)
	}
	return nil
}

// nextMessage blocks for the next frame from the server. The connection
// stays dirty unless the caller goes on to call endClean.
func (s *Sequence) nextMessage() (*buff.Reader, error) {
	r := s.conn.r
	if !r.Next() {
		if errors.Is(r.Err, io.EOF) {
			return nil, wrapError(
				ClientConnectionEosError,
				"server closed the connection",
				r.Err,
			)
		}
		var netErr net.Error
		if errors.As(r.Err, &netErr) && netErr.Timeout() {
			return nil, wrapError(
				ClientConnectionTimeoutError,
				"timed out waiting for a message",
				r.Err,
			)
		}
		return nil, wrapError(
			ClientConnectionError,
			"failed to read message",
			r.Err,
		)
	}
	return r, nil
}

// consumeReady reads a ReadyForCommand payload and advances the
// connection's transaction state from it.
func (s *Sequence) consumeReady(r *buff.Reader) {
	n := r.PopUint16()
	for i := uint16(0); i < n; i++ {
		r.PopUint16()
		r.PopString()
	}
	s.conn.txState = transactionStateFromWire(r.PopUint8())
}

// waitReady blocks until a ReadyForCommand message arrives, discarding
// anything else in between. It is used by errSync, and after an
// ErrorResponse that arrives once a Sync is already on the wire; in both
// cases the stream settles on ReadyForCommand and nothing else needs
// inspecting.
//
// deadline is enforced on the underlying socket itself via
// SetReadDeadline, since the blocking read inside nextMessage has no
// other way to time out: a server that never answers the recovery Sync
// would otherwise hang this call forever. A zero deadline means no
// deadline.
func (s *Sequence) waitReady(deadline time.Time) error {
	if err := s.conn.conn.SetReadDeadline(deadline); err != nil {
		return wrapError(
			ClientConnectionError, "failed to set read deadline", err,
		)
	}
	defer s.conn.conn.SetReadDeadline(time.Time{})

	for {
		r, err := s.nextMessage()
		if err != nil {
			return err
		}

		if message.Message(r.MsgType) == message.ReadyForCommand {
			s.consumeReady(r)
			return nil
		}

		r.DiscardMessage()
	}
}

// errSync resynchronizes the protocol stream after a mid-exchange
// ErrorResponse: it sends a Sync and blocks for the matching
// ReadyForCommand under a hard deadline. If that succeeds, the
// connection returns to a consistent state and respErr is returned to
// the caller as an ordinary query error. If it fails -- timeout,
// transport error -- the connection is left dirty and that failure is
// returned instead, since it supersedes respErr as the more urgent
// problem.
func (s *Sequence) errSync(respErr error) error {
	w := buff.NewWriter(make([]byte, 0, 8))
	w.BeginMessage(uint8(message.Sync))
	w.EndMessage()

	if err := s.sendMessages(w); err != nil {
		return err
	}

	if err := s.waitReady(time.Now().Add(errSyncTimeout)); err != nil {
		return err
	}

	s.endClean()
	return respErr
}

// decodeErrorResponse reads an ErrorResponse payload verbatim: severity
// byte (discarded, this core does not distinguish warnings from errors),
// a code, a message, and a header block.
func decodeErrorResponse(r *buff.Reader) *ServerErrorResponse {
	r.PopUint8() // severity
	code := r.PopUint32()
	msg := r.PopString()

	n := r.PopUint16()
	for i := uint16(0); i < n; i++ {
		r.PopUint16()
		r.PopString()
	}

	return &ServerErrorResponse{Code: code, Message: msg}
}

// outOfOrder builds a ProtocolOutOfOrderError naming the message type
// that showed up where the exchange did not expect one, and the phase
// it was read during.
func outOfOrder(phase string, got message.Message) error {
	return newError(
		ProtocolOutOfOrderError,
		fmt.Sprintf("unexpected %v message during %v", got, phase),
	)
}
