package tessera

import (
	"reflect"

	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/message"
)

// runPrepare is the Prepare phase of an exchange: it sends Prepare+Flush
// and waits for PrepareComplete. Flush asks the server for a partial
// response with no transaction-boundary reply, so this round trip never
// sees a ReadyForCommand -- that only ever follows a Sync.
func runPrepare(s *Sequence, query string, params StatementParams) error {
	w := buff.NewWriter(make([]byte, 0, 512))

	w.BeginMessage(uint8(message.Prepare))
	w.PushUint16(0)
	w.PushUint8(uint8(params.IOFormat))
	w.PushUint8(uint8(params.Cardinality))
	w.PushString(query)
	w.EndMessage()

	w.BeginMessage(uint8(message.Flush))
	w.EndMessage()

	if err := s.sendMessages(w); err != nil {
		return err
	}

	r, err := s.nextMessage()
	if err != nil {
		return err
	}

	switch message.Message(r.MsgType) {
	case message.PrepareComplete:
		r.DiscardMessage()
		return nil
	case message.ErrorResponse:
		return s.errSync(decodeErrorResponse(r))
	default:
		return outOfOrder("prepare", message.Message(r.MsgType))
	}
}

// runDescribe is the Describe phase: it sends DescribeStatement+Flush and
// waits for CommandDataDescription, a separate round trip from runPrepare
// for the same reason -- Flush never triggers a ReadyForCommand.
func runDescribe(
	s *Sequence,
	argType reflect.Type,
	outType reflect.Type,
) (*preparedStatement, error) {
	w := buff.NewWriter(make([]byte, 0, 64))

	w.BeginMessage(uint8(message.DescribeStatement))
	w.PushUint16(0)
	w.PushUint8(0)
	w.EndMessage()

	w.BeginMessage(uint8(message.Flush))
	w.EndMessage()

	if err := s.sendMessages(w); err != nil {
		return nil, err
	}

	r, err := s.nextMessage()
	if err != nil {
		return nil, err
	}

	switch message.Message(r.MsgType) {
	case message.CommandDataDescription:
		return decodeCommandDataDescription(r, argType, outType)
	case message.ErrorResponse:
		return nil, s.errSync(decodeErrorResponse(r))
	default:
		return nil, outOfOrder("describe", message.Message(r.MsgType))
	}
}

// runExecute is the Execute -> Sync half of an exchange: it sends Execute
// with the encoded arguments, followed by Sync, and returns a rowStream
// without reading anything itself. The rows, CommandComplete and the
// closing ReadyForCommand are read by the stream's pull and drain.
func runExecute(
	s *Sequence,
	stmt *preparedStatement,
	args interface{},
) (*rowStream, error) {
	w := buff.NewWriter(make([]byte, 0, 512))

	w.BeginMessage(uint8(message.Execute))
	w.PushUint16(0)
	w.PushString("")
	if err := stmt.encodeArguments(w, args); err != nil {
		s.endClean()
		return nil, err
	}
	w.EndMessage()

	w.BeginMessage(uint8(message.Sync))
	w.EndMessage()

	if err := s.sendMessages(w); err != nil {
		return nil, err
	}

	return &rowStream{seq: s, stmt: stmt}, nil
}
