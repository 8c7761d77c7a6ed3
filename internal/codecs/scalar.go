package codecs

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
)

// Scalar type descriptor IDs, a trimmed subset of the full EdgeQL scalar
// zoo (std::int64, std::bool, std::bytes, std::str). The full set also
// covers floats, every datetime flavor, bigint/decimal, and more, which
// code-generated client bindings build from the same descriptor tree but
// are not needed to exercise this core end-to-end.
var (
	StrID   = uuid.UUID{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	BytesID = uuid.UUID{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2}
	Int64ID = uuid.UUID{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 5}
	BoolID  = uuid.UUID{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 9}
)

// JSONBytes is the special-cased codec for io_format=json queries: in Go
// a json query returns bytes rather than a string, but the descriptor
// type ID negotiated with the server is still str.
var JSONBytes = strCodec{id: StrID}

var (
	int64Type = reflect.TypeOf(int64(0))
	boolType  = reflect.TypeOf(false)
	bytesType = reflect.TypeOf([]byte(nil))
	strType   = reflect.TypeOf("")
)

func buildScalarDecoder(
	desc descriptor.Descriptor,
	outType reflect.Type,
) (Decoder, error) {
	switch desc.ID {
	case Int64ID:
		if outType != int64Type {
			return nil, fmt.Errorf(
				"expected out type int64, got %v", outType)
		}
		return int64Codec{}, nil
	case BoolID:
		if outType != boolType {
			return nil, fmt.Errorf(
				"expected out type bool, got %v", outType)
		}
		return boolCodec{}, nil
	case BytesID:
		if outType != bytesType {
			return nil, fmt.Errorf(
				"expected out type []byte, got %v", outType)
		}
		return bytesCodec{}, nil
	case StrID:
		if outType == bytesType {
			return JSONBytes, nil
		}
		if outType != strType {
			return nil, fmt.Errorf(
				"expected out type string or []byte, got %v", outType)
		}
		return strCodec{id: StrID}, nil
	default:
		return nil, fmt.Errorf("unsupported scalar type id: %v", desc.ID)
	}
}

func buildScalarEncoder(desc descriptor.Descriptor) (Encoder, error) {
	switch desc.ID {
	case Int64ID:
		return int64Codec{}, nil
	case BoolID:
		return boolCodec{}, nil
	case BytesID:
		return bytesCodec{}, nil
	case StrID:
		return strCodec{id: StrID}, nil
	default:
		return nil, fmt.Errorf("unsupported scalar type id: %v", desc.ID)
	}
}

type int64Codec struct{}

func (c int64Codec) DescriptorID() uuid.UUID { return Int64ID }

func (c int64Codec) Decode(r *buff.Reader, out reflect.Value, _ Path) error {
	out.SetInt(int64(r.PopUint64()))
	return nil
}

func (c int64Codec) Encode(w *buff.Writer, val interface{}, path Path) error {
	v, ok := val.(int64)
	if !ok {
		return fmt.Errorf(
			"expected %v to be int64, got %T", path, val)
	}
	w.PushUint32(8)
	w.PushUint64(uint64(v))
	return nil
}

type boolCodec struct{}

func (c boolCodec) DescriptorID() uuid.UUID { return BoolID }

func (c boolCodec) Decode(r *buff.Reader, out reflect.Value, _ Path) error {
	out.SetBool(r.PopUint8() != 0)
	return nil
}

func (c boolCodec) Encode(w *buff.Writer, val interface{}, path Path) error {
	v, ok := val.(bool)
	if !ok {
		return fmt.Errorf(
			"expected %v to be bool, got %T", path, val)
	}
	w.PushUint32(1)
	if v {
		w.PushUint8(1)
	} else {
		w.PushUint8(0)
	}
	return nil
}

type bytesCodec struct{}

func (c bytesCodec) DescriptorID() uuid.UUID { return BytesID }

func (c bytesCodec) Decode(r *buff.Reader, out reflect.Value, _ Path) error {
	// r is already bounded to exactly this value's bytes by the caller
	// (the composite decoder's elmLen, or the top-level Data element
	// length); there is no length prefix left to pop here.
	cp := make([]byte, len(r.Buf))
	copy(cp, r.Buf)
	out.SetBytes(cp)
	return nil
}

func (c bytesCodec) Encode(w *buff.Writer, val interface{}, path Path) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf(
			"expected %v to be []byte, got %T", path, val)
	}
	w.PushUint32(uint32(len(v)))
	w.PushBytes(v)
	return nil
}

// strCodec decodes/encodes std::str. It also backs JSONBytes, where the
// decode target is []byte instead of string while the wire type id
// remains str.
type strCodec struct {
	id uuid.UUID
}

func (c strCodec) DescriptorID() uuid.UUID { return c.id }

func (c strCodec) Decode(r *buff.Reader, out reflect.Value, _ Path) error {
	if out.Kind() == reflect.Slice {
		cp := make([]byte, len(r.Buf))
		copy(cp, r.Buf)
		out.SetBytes(cp)
		return nil
	}
	out.SetString(string(r.Buf))
	return nil
}

func (c strCodec) Encode(w *buff.Writer, val interface{}, path Path) error {
	switch v := val.(type) {
	case string:
		w.PushUint32(uint32(len(v)))
		w.PushBytes([]byte(v))
	case []byte:
		w.PushUint32(uint32(len(v)))
		w.PushBytes(v)
	default:
		return fmt.Errorf(
			"expected %v to be string, got %T", path, val)
	}
	return nil
}
