package tessera

import (
	"reflect"

	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/codecs"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
)

// preparedStatement is the negotiated shape of one Prepare/Describe
// round trip: the server's reported cardinality, and the codecs built
// from its input and output descriptor trees.
type preparedStatement struct {
	cardinality Cardinality
	inCodec     codecs.Encoder
	outCodec    codecs.Decoder
	outType     reflect.Type
}

// decodeCommandDataDescription reads a CommandDataDescription payload --
// a reported cardinality followed by an input descriptor frame and an
// output descriptor frame -- and builds the codecs argType and outType
// need to cross the wire.
func decodeCommandDataDescription(
	r *buff.Reader,
	argType reflect.Type,
	outType reflect.Type,
) (*preparedStatement, error) {
	n := r.PopUint16()
	for i := uint16(0); i < n; i++ {
		r.PopUint16()
		r.PopString()
	}

	cardinality := Cardinality(r.PopUint8())

	inFrame := r.PopBytes()
	inDesc, err := descriptor.ParseFrame(buff.SimpleReader(inFrame))
	if err != nil {
		return nil, wrapError(
			ProtocolEncodingError, "failed to parse input descriptor", err,
		)
	}

	outFrame := r.PopBytes()
	outDesc, err := descriptor.ParseFrame(buff.SimpleReader(outFrame))
	if err != nil {
		return nil, wrapError(
			ProtocolEncodingError, "failed to parse output descriptor", err,
		)
	}

	inCodec, err := codecs.BuildEncoder(inDesc)
	if err != nil {
		return nil, wrapError(
			ClientEncodingError, "failed to build argument encoder", err,
		)
	}

	outCodec, err := codecs.BuildDecoder(outDesc, outType)
	if err != nil {
		return nil, wrapError(
			ProtocolEncodingError, "failed to build row decoder", err,
		)
	}

	return &preparedStatement{
		cardinality: cardinality,
		inCodec:     inCodec,
		outCodec:    outCodec,
		outType:     outType,
	}, nil
}

// encodeArguments writes args onto w using the statement's negotiated
// input codec. Encoding failures are client-local: nothing has been
// written to the wire on the shared connection yet, so the caller may
// end the Sequence cleanly instead of marking the connection dirty.
func (p *preparedStatement) encodeArguments(w *buff.Writer, args interface{}) error {
	val := interface{}(args)
	if val == nil {
		val = struct{}{}
	}

	if err := p.inCodec.Encode(w, val, codecs.Path("args")); err != nil {
		return wrapError(ClientEncodingError, "failed to encode arguments", err)
	}
	return nil
}
