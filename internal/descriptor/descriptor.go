// Package descriptor parses the type descriptor trees a
// CommandDataDescription message carries, the shape the row decoder
// binds against.
package descriptor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
)

// Type identifies the shape of a descriptor node.
type Type uint8

// Descriptor node kinds this core understands. The full protocol has many
// more (enum, range, multirange, compound scalars); only the shapes needed
// to exercise the exposed verbs are parsed here.
const (
	Set Type = iota
	BaseScalar
	Tuple
	Object
)

// Wire tags for the descriptor kinds above, as laid out on a
// CommandDataDescription frame.
const (
	tagSet        = 0
	tagObject     = 1
	tagBaseScalar = 2
	tagTuple      = 4
)

// IDZero is the type ID of the empty/no-op descriptor: a statement that
// returns no meaningful result, e.g. a DDL command.
var IDZero = uuid.UUID{}

// Field is one member of a Tuple or Object descriptor, naming the slot a
// codec binds to.
type Field struct {
	Name string
	Desc Descriptor
}

// Descriptor is one node of a parsed descriptor tree.
type Descriptor struct {
	Type   Type
	ID     uuid.UUID
	Fields []Field
}

// RootPos reports whether d is a usable root of a descriptor tree. ok is
// false only for the zero-value Descriptor, which callers use as a
// sentinel for "no descriptor was parsed."
func (d Descriptor) RootPos() (int, bool) {
	if d.ID == uuid.Nil && d.Type == Set && len(d.Fields) == 0 {
		return 0, false
	}
	return 0, true
}

// Pop reads one descriptor node from r. frames holds every descriptor
// already decoded earlier in the same frame, since the wire format
// references child descriptors by their position in that flat list
// rather than nesting them inline.
func Pop(r *buff.Reader, frames []Descriptor) (Descriptor, error) {
	switch typ := r.PopUint8(); typ {
	case tagSet:
		id := r.PopUUID()
		idx := r.PopUint16()
		return Descriptor{
			Type: Set,
			ID:   id,
			Fields: []Field{{Desc: frames[idx]}},
		}, nil
	case tagBaseScalar:
		id := r.PopUUID()
		return Descriptor{Type: BaseScalar, ID: id}, nil
	case tagTuple:
		id := r.PopUUID()
		n := r.PopUint16()
		fields := make([]Field, n)
		for i := range fields {
			idx := r.PopUint16()
			fields[i] = Field{Desc: frames[idx]}
		}
		return Descriptor{Type: Tuple, ID: id, Fields: fields}, nil
	case tagObject:
		id := r.PopUUID()
		n := r.PopUint16()
		fields := make([]Field, n)
		for i := range fields {
			name := r.PopString()
			idx := r.PopUint16()
			fields[i] = Field{Name: name, Desc: frames[idx]}
		}
		return Descriptor{Type: Object, ID: id, Fields: fields}, nil
	default:
		return Descriptor{}, fmt.Errorf("unknown descriptor type tag: 0x%x", typ)
	}
}

// ParseFrame parses every descriptor node in a CommandDataDescription
// frame and returns the root descriptor (the last one written, per the
// wire's back-reference convention).
func ParseFrame(r *buff.Reader) (Descriptor, error) {
	var frames []Descriptor
	for len(r.Buf) > 0 {
		d, err := Pop(r, frames)
		if err != nil {
			return Descriptor{}, err
		}
		frames = append(frames, d)
	}

	if len(frames) == 0 {
		return Descriptor{}, fmt.Errorf("empty descriptor frame")
	}

	return frames[len(frames)-1], nil
}
