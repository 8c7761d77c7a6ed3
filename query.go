package tessera

import (
	"reflect"
	"time"

	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/message"
)

// Execute runs script, a sequence of one or more statements that return
// no rows, e.g. DDL or a bare INSERT. It is the one verb that does not
// go through Prepare/Describe at all, since a script has no typed result
// to negotiate: it sends ExecuteScript+Sync and reads messages until the
// ReadyForCommand that answers that Sync.
func (c *Connection) Execute(script string) error {
	s, err := startSequence(c)
	if err != nil {
		return err
	}

	w := buff.NewWriter(make([]byte, 0, 256))
	w.BeginMessage(uint8(message.ExecuteScript))
	w.PushUint16(0)
	w.PushString(script)
	w.EndMessage()

	w.BeginMessage(uint8(message.Sync))
	w.EndMessage()

	if err := s.sendMessages(w); err != nil {
		return err
	}

	for {
		r, err := s.nextMessage()
		if err != nil {
			return err
		}

		switch message.Message(r.MsgType) {
		case message.CommandComplete:
			r.DiscardMessage()
		case message.ErrorResponse:
			// The Sync is already on the wire, so only its
			// ReadyForCommand remains to be read.
			respErr := decodeErrorResponse(r)
			if err := s.waitReady(time.Time{}); err != nil {
				return err
			}
			s.endClean()
			return respErr
		case message.ReadyForCommand:
			s.consumeReady(r)
			s.endClean()
			return nil
		default:
			return outOfOrder("execute script", message.Message(r.MsgType))
		}
	}
}

// ExecuteArgs runs query with args bound as its arguments, expecting no
// rows back. args is encoded the same way query arguments always are: a
// struct whose fields are bound positionally, in declaration order, to
// the statement's declared parameters. Struct tags are not consulted.
func (c *Connection) ExecuteArgs(query string, args interface{}) error {
	params := DefaultStatementParams
	params.Cardinality = NoResult

	stream, _, err := c.run(query, params, args, reflect.TypeOf(struct{}{}))
	if err != nil {
		return err
	}
	return stream.drain()
}

// RowStream is the exported, lazy cursor Query hands back: rows are
// decoded one at a time as Next is called, not materialized up front, so
// a caller can stop early without reading a result set it does not need.
type RowStream[R any] struct {
	stream  *rowStream
	outType reflect.Type
}

// Next decodes the next row. It returns (zero, false, nil) once the
// stream is exhausted, at which point the underlying Sequence has already
// ended cleanly and Next must not be called again.
func (rs *RowStream[R]) Next() (R, bool, error) {
	var zero R
	row := reflect.New(rs.outType).Elem()
	more, err := rs.stream.pull(row)
	if err != nil {
		return zero, false, err
	}
	if !more {
		return zero, false, nil
	}
	return row.Interface().(R), true, nil
}

// Close discards any rows the caller did not read and ends the Sequence
// cleanly. Calling it after Next has already returned false is a no-op.
func (rs *RowStream[R]) Close() error {
	return rs.stream.drain()
}

// Query runs query and returns a RowStream decoding rows into R lazily,
// binding R the same way every row verb does.
func Query[R any](c *Connection, query string, args interface{}) (*RowStream[R], error) {
	var zero R
	outType := reflect.TypeOf(zero)

	stream, _, err := c.runExpectingResult(query, DefaultStatementParams, args, outType)
	if err != nil {
		return nil, err
	}

	return &RowStream[R]{stream: stream, outType: outType}, nil
}

// QueryRow runs query and returns its single row. An empty result is a
// NoDataError. If more than one row comes back, QueryRow drains the
// remainder so the Sequence still ends at a clean message boundary, and
// reports a ProtocolError -- a query_row caller gets a consistent
// connection back even when its cardinality assumption was wrong.
func QueryRow[R any](c *Connection, query string, args interface{}) (R, error) {
	var zero R
	outType := reflect.TypeOf(zero)
	params := DefaultStatementParams
	params.Cardinality = One

	stream, _, err := c.runExpectingResult(query, params, args, outType)
	if err != nil {
		return zero, err
	}

	row := reflect.New(outType).Elem()
	more, err := stream.pull(row)
	if err != nil {
		return zero, err
	}
	if !more {
		return zero, newError(NoDataError, "query returned no rows")
	}

	extra := reflect.New(outType).Elem()
	hasExtra, err := stream.pull(extra)
	if err != nil {
		return zero, err
	}
	if hasExtra {
		if err := stream.drain(); err != nil {
			return zero, err
		}
		return zero, newError(ProtocolError, "query returned more than one row")
	}

	return row.Interface().(R), nil
}

// QueryRowOpt runs query and returns its single row, or the zero value
// and false if the query returned no rows. Unlike QueryRow, a second row
// is treated as an immediate protocol violation: the Sequence is dropped
// without ending cleanly and the connection is left dirty, since finding
// an unexpected extra row this late means the caller's assumptions about
// the statement no longer hold.
func QueryRowOpt[R any](c *Connection, query string, args interface{}) (R, bool, error) {
	var zero R
	outType := reflect.TypeOf(zero)
	params := DefaultStatementParams
	params.Cardinality = AtMostOne

	stream, _, err := c.runExpectingResult(query, params, args, outType)
	if err != nil {
		return zero, false, err
	}

	row := reflect.New(outType).Elem()
	more, err := stream.pull(row)
	if err != nil {
		return zero, false, err
	}
	if !more {
		return zero, false, nil
	}

	extra := reflect.New(outType).Elem()
	hasExtra, err := stream.pull(extra)
	if err != nil {
		return zero, false, err
	}
	if hasExtra {
		return zero, false, newError(
			ProtocolError, "query returned more than one row",
		)
	}

	return row.Interface().(R), true, nil
}

// QueryJSON runs query and returns its result set as a single JSON
// array, encoded by the server rather than assembled client-side.
func (c *Connection) QueryJSON(query string, args interface{}) ([]byte, error) {
	return c.queryBytes(query, args, FormatJSON)
}

// JSONStream is the exported cursor QueryJSONElements hands back: one
// JSON document per row, decoded lazily the same way RowStream is.
type JSONStream struct {
	stream *rowStream
}

// Next decodes the next row's JSON document. It returns (nil, false, nil)
// once the stream is exhausted.
func (s *JSONStream) Next() ([]byte, bool, error) {
	row := reflect.New(reflect.TypeOf([]byte(nil))).Elem()
	more, err := s.stream.pull(row)
	if err != nil {
		return nil, false, err
	}
	if !more {
		return nil, false, nil
	}
	return row.Interface().([]byte), true, nil
}

// Close discards any documents the caller did not read and ends the
// Sequence cleanly.
func (s *JSONStream) Close() error {
	return s.stream.drain()
}

// QueryJSONElements runs query and returns a JSONStream yielding one
// individually-encoded JSON document per row, instead of one JSON array.
func (c *Connection) QueryJSONElements(query string, args interface{}) (*JSONStream, error) {
	params := DefaultStatementParams
	params.IOFormat = FormatJSONElements

	outType := reflect.TypeOf([]byte(nil))
	stream, _, err := c.runExpectingResult(query, params, args, outType)
	if err != nil {
		return nil, err
	}

	return &JSONStream{stream: stream}, nil
}

func (c *Connection) queryBytes(
	query string,
	args interface{},
	format IOFormat,
) ([]byte, error) {
	params := DefaultStatementParams
	params.IOFormat = format

	outType := reflect.TypeOf([]byte(nil))
	stream, _, err := c.runExpectingResult(query, params, args, outType)
	if err != nil {
		return nil, err
	}

	row := reflect.New(outType).Elem()
	more, err := stream.pull(row)
	if err != nil {
		return nil, err
	}
	if !more {
		return nil, newError(NoDataError, "query returned no rows")
	}
	return row.Interface().([]byte), nil
}

// run is the shared Prepare/Describe/Execute pipeline behind every row
// and JSON verb above: it opens a Sequence, negotiates the statement
// shape, sends the encoded arguments, and hands back a rowStream the
// caller pulls from.
func (c *Connection) run(
	query string,
	params StatementParams,
	args interface{},
	outType reflect.Type,
) (*rowStream, *preparedStatement, error) {
	s, err := startSequence(c)
	if err != nil {
		return nil, nil, err
	}

	if err := runPrepare(s, query, params); err != nil {
		return nil, nil, err
	}

	argType := reflect.TypeOf(args)
	stmt, err := runDescribe(s, argType, outType)
	if err != nil {
		return nil, nil, err
	}

	stream, err := runExecute(s, stmt, args)
	if err != nil {
		return nil, nil, err
	}

	return stream, stmt, nil
}

// runExpectingResult is run plus the one check every row/JSON verb needs
// before it ever calls pull: a statement the server reports as
// cardinality-less has no rows to stream, and using a row verb on it is
// a caller error, not a protocol one.
func (c *Connection) runExpectingResult(
	query string,
	params StatementParams,
	args interface{},
	outType reflect.Type,
) (*rowStream, *preparedStatement, error) {
	stream, stmt, err := c.run(query, params, args, outType)
	if err != nil {
		return nil, nil, err
	}

	if stmt.cardinality == NoResult {
		if err := stream.drain(); err != nil {
			return nil, nil, err
		}
		return nil, nil, newError(
			NoResultExpectedError,
			"statement does not return a result",
		)
	}

	return stream, stmt, nil
}
