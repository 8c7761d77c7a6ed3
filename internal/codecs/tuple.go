package codecs

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
)

// tupleCodec binds a positional std::tuple to a Go struct, matching
// fields in declaration order.
type tupleCodec struct {
	id     uuid.UUID
	fields []Decoder
}

func buildTupleDecoder(
	desc descriptor.Descriptor,
	outType reflect.Type,
) (Decoder, error) {
	if outType.Kind() != reflect.Struct {
		return nil, fmt.Errorf(
			"expected out type to be a struct, got %v", outType)
	}
	if outType.NumField() != len(desc.Fields) {
		return nil, fmt.Errorf(
			"expected %v fields, got %v",
			len(desc.Fields), outType.NumField(),
		)
	}

	fields := make([]Decoder, len(desc.Fields))
	for i, f := range desc.Fields {
		dec, err := BuildDecoder(f.Desc, outType.Field(i).Type)
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", i, err)
		}
		fields[i] = dec
	}

	return tupleCodec{id: desc.ID, fields: fields}, nil
}

func buildTupleEncoder(desc descriptor.Descriptor) (Encoder, error) {
	fields := make([]Encoder, len(desc.Fields))
	for i, f := range desc.Fields {
		enc, err := BuildEncoder(f.Desc)
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", i, err)
		}
		fields[i] = enc
	}

	return tupleEncoder{id: desc.ID, fields: fields}, nil
}

func (c tupleCodec) DescriptorID() uuid.UUID { return c.id }

func (c tupleCodec) Decode(
	r *buff.Reader,
	out reflect.Value,
	path Path,
) error {
	n := int(r.PopUint32())
	if n != len(c.fields) {
		return fmt.Errorf(
			"%v: expected %v elements, got %v", path, len(c.fields), n)
	}

	for i, dec := range c.fields {
		r.Discard(4) // reserved
		elmLen := r.PopUint32()
		elm := r.PopSlice(elmLen)
		if err := dec.Decode(elm, out.Field(i), path.AddIndex(i)); err != nil {
			return err
		}
	}

	return nil
}

type tupleEncoder struct {
	id     uuid.UUID
	fields []Encoder
}

func (c tupleEncoder) DescriptorID() uuid.UUID { return c.id }

func (c tupleEncoder) Encode(
	w *buff.Writer,
	val interface{},
	path Path,
) error {
	v := reflect.ValueOf(val)
	if v.Kind() != reflect.Struct || v.NumField() != len(c.fields) {
		return fmt.Errorf(
			"%v: expected a struct with %v fields, got %T",
			path, len(c.fields), val)
	}

	w.BeginBytes()
	w.PushUint32(uint32(len(c.fields)))
	for i, enc := range c.fields {
		w.PushUint32(0) // reserved
		if err := enc.Encode(w, v.Field(i).Interface(), path.AddIndex(i)); err != nil {
			return err
		}
	}
	w.EndBytes()

	return nil
}
