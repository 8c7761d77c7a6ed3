// Package codecs binds server-declared descriptor shapes to Go values:
// Encoder pushes argument values onto the wire, Decoder pulls row values
// off of it. Building a codec from a descriptor is the bridge between
// the untyped byte stream and a caller's Go types.
package codecs

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
)

// Encoder pushes a Go value onto the wire as a query argument.
type Encoder interface {
	DescriptorID() uuid.UUID
	Encode(w *buff.Writer, val interface{}, path Path) error
}

// Decoder pulls one value off of the wire and writes it into out.
type Decoder interface {
	DescriptorID() uuid.UUID
	Decode(r *buff.Reader, out reflect.Value, path Path) error
}

// BuildDecoder builds a Decoder for desc, binding it against outType.
// Tuple/Object children are taken from desc.Fields, which the descriptor
// parser has already resolved.
func BuildDecoder(
	desc descriptor.Descriptor,
	outType reflect.Type,
) (Decoder, error) {
	// A statement with no meaningful result reports the zero descriptor
	// ID regardless of what Type happens to default to; check for it
	// before dispatching on Type so it can't be shadowed by Set's
	// zero value.
	if desc.ID == descriptor.IDZero && len(desc.Fields) == 0 {
		return NoOpDecoder, nil
	}

	switch desc.Type {
	case descriptor.BaseScalar:
		return buildScalarDecoder(desc, outType)
	case descriptor.Tuple:
		return buildTupleDecoder(desc, outType)
	case descriptor.Object:
		return buildObjectDecoder(desc, outType)
	case descriptor.Set:
		return BuildDecoder(desc.Fields[0].Desc, outType)
	default:
		return nil, fmt.Errorf("unsupported descriptor type: %v", desc.Type)
	}
}

// BuildEncoder builds an Encoder for desc, the counterpart of
// BuildDecoder used when sending query arguments.
func BuildEncoder(desc descriptor.Descriptor) (Encoder, error) {
	if desc.ID == descriptor.IDZero && len(desc.Fields) == 0 {
		return NoOpEncoder, nil
	}

	switch desc.Type {
	case descriptor.BaseScalar:
		return buildScalarEncoder(desc)
	case descriptor.Tuple:
		return buildTupleEncoder(desc)
	default:
		return nil, fmt.Errorf("unsupported descriptor type: %v", desc.Type)
	}
}
