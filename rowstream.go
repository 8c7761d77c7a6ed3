package tessera

import (
	"reflect"
	"time"

	"github.com/tesseradb/tesseradb-go/internal/codecs"
	"github.com/tesseradb/tesseradb-go/internal/message"
)

// rowStream is a lazy, single-pass cursor over the Data messages an
// Execute produces. It is not restartable: once pull reports the stream
// complete or returns a terminal error, the underlying Sequence has
// already been ended (cleanly or not) and the rowStream is done.
type rowStream struct {
	seq  *Sequence
	stmt *preparedStatement

	complete bool
	termErr  error
}

// awaitReadyForCommand reads exactly one message and requires it to be
// ReadyForCommand, which is what must follow CommandComplete once a Sync
// has already been sent.
func (rs *rowStream) awaitReadyForCommand() error {
	r, err := rs.seq.nextMessage()
	if err != nil {
		return err
	}
	if message.Message(r.MsgType) != message.ReadyForCommand {
		return outOfOrder("execute", message.Message(r.MsgType))
	}
	rs.seq.consumeReady(r)
	return nil
}

// pull advances the stream by one row, decoding it into out. It returns
// (true, nil) when a row was decoded into out, (false, nil) once the
// stream is exhausted, and (false, err) on a terminal failure -- after
// which the stream is done and must not be pulled again.
func (rs *rowStream) pull(out reflect.Value) (bool, error) {
	if rs.complete {
		return false, nil
	}

	r, err := rs.seq.nextMessage()
	if err != nil {
		rs.complete = true
		rs.seq.conn.dirty = true
		return false, err
	}

	switch message.Message(r.MsgType) {
	case message.Data:
		n := r.PopUint16()
		if n == 0 {
			return false, outOfOrder("execute", message.Data)
		}
		elmLen := r.PopUint32()
		elm := r.PopSlice(elmLen)
		if err := rs.stmt.outCodec.Decode(elm, out, codecs.Path("row")); err != nil {
			rs.complete = true
			return false, wrapError(ProtocolEncodingError, "failed to decode row", err)
		}
		r.DiscardMessage()
		return true, nil

	case message.CommandComplete:
		r.DiscardMessage()
		if err := rs.awaitReadyForCommand(); err != nil {
			rs.complete = true
			return false, err
		}
		rs.seq.endClean()
		rs.complete = true
		return false, nil

	case message.ErrorResponse:
		// Execute was sent with its Sync, so only that Sync's
		// ReadyForCommand remains to be read.
		respErr := decodeErrorResponse(r)
		rs.complete = true
		if err := rs.seq.waitReady(time.Time{}); err != nil {
			return false, err
		}
		rs.seq.endClean()
		return false, respErr

	default:
		rs.complete = true
		return false, outOfOrder("execute", message.Message(r.MsgType))
	}
}

// drain discards every remaining row without decoding it, then ends the
// Sequence the same way pull does once CommandComplete arrives. It is
// used where an extra row is discovered but the exchange still needs to
// end at a clean message boundary rather than leave the connection
// dirty.
func (rs *rowStream) drain() error {
	for {
		if rs.complete {
			return rs.termErr
		}

		r, err := rs.seq.nextMessage()
		if err != nil {
			rs.complete = true
			rs.seq.conn.dirty = true
			return err
		}

		switch message.Message(r.MsgType) {
		case message.Data:
			r.DiscardMessage()

		case message.CommandComplete:
			r.DiscardMessage()
			if err := rs.awaitReadyForCommand(); err != nil {
				rs.complete = true
				return err
			}
			rs.seq.endClean()
			rs.complete = true
			return nil

		case message.ErrorResponse:
			respErr := decodeErrorResponse(r)
			rs.complete = true
			if err := rs.seq.waitReady(time.Time{}); err != nil {
				return err
			}
			rs.seq.endClean()
			return respErr

		default:
			rs.complete = true
			return outOfOrder("execute", message.Message(r.MsgType))
		}
	}
}
