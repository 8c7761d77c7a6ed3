package codecs

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
	"github.com/tesseradb/tesseradb-go/internal/introspect"
)

// objectField pairs a named descriptor field with the struct field it
// binds to.
type objectField struct {
	name    string
	decoder Decoder
	index   []int
}

// objectCodec binds an Object descriptor (a query result row shape) to a
// Go struct via field name or `tessera:"..."` tag. Field order in the
// descriptor need not match the caller's struct layout; binding goes by
// name, looked up once at build time.
type objectCodec struct {
	id     uuid.UUID
	fields []objectField
}

func buildObjectDecoder(
	desc descriptor.Descriptor,
	outType reflect.Type,
) (Decoder, error) {
	if outType.Kind() != reflect.Struct {
		return nil, fmt.Errorf(
			"expected out type to be a struct, got %v", outType)
	}

	fields := make([]objectField, len(desc.Fields))
	for i, f := range desc.Fields {
		sf, ok := introspect.StructField(outType, f.Name)
		if !ok {
			return nil, fmt.Errorf(
				"no field for shape element %q in %v", f.Name, outType)
		}

		dec, err := BuildDecoder(f.Desc, sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", f.Name, err)
		}

		fields[i] = objectField{
			name:    f.Name,
			decoder: dec,
			index:   sf.Index,
		}
	}

	return objectCodec{id: desc.ID, fields: fields}, nil
}

func (c objectCodec) DescriptorID() uuid.UUID { return c.id }

func (c objectCodec) Decode(
	r *buff.Reader,
	out reflect.Value,
	path Path,
) error {
	n := int(r.PopUint32())
	if n != len(c.fields) {
		return fmt.Errorf(
			"%v: expected %v elements, got %v", path, len(c.fields), n)
	}

	for _, f := range c.fields {
		r.Discard(4) // reserved
		elmLen := r.PopUint32()
		elm := r.PopSlice(elmLen)

		fv := out.FieldByIndex(f.index)
		if err := f.decoder.Decode(elm, fv, path.AddField(f.name)); err != nil {
			return err
		}
	}

	return nil
}
