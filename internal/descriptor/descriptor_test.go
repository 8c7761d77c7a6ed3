package descriptor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tesseradb/tesseradb-go/internal/buff"
)

var int64ID = uuid.UUID{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 5}

func pushScalar(w *buff.Writer, id uuid.UUID) {
	w.PushUint8(tagBaseScalar)
	w.PushUUID(id)
}

func TestParseFrameBaseScalar(t *testing.T) {
	w := buff.NewWriter(make([]byte, 0, 32))
	w.BeginMessage(0)
	pushScalar(w, int64ID)
	w.EndMessage()

	buf := w.Unwrap()
	// strip off the fake message header (type byte + 4 length bytes)
	frame := buf[5:]

	desc, err := ParseFrame(buff.SimpleReader(frame))
	require.NoError(t, err)
	assert.Equal(t, BaseScalar, desc.Type)
	assert.Equal(t, int64ID, desc.ID)
}

func TestParseFrameTuple(t *testing.T) {
	w := buff.NewWriter(make([]byte, 0, 64))
	w.BeginMessage(0)
	pushScalar(w, int64ID)

	tupleID := uuid.New()
	w.PushUint8(tagTuple)
	w.PushUUID(tupleID)
	w.PushUint16(1)
	w.PushUint16(0) // back-reference to the scalar parsed above
	w.EndMessage()

	buf := w.Unwrap()
	frame := buf[5:]

	desc, err := ParseFrame(buff.SimpleReader(frame))
	require.NoError(t, err)
	assert.Equal(t, Tuple, desc.Type)
	assert.Equal(t, tupleID, desc.ID)
	require.Len(t, desc.Fields, 1)
	assert.Equal(t, BaseScalar, desc.Fields[0].Desc.Type)
}

func TestParseFrameUnknownTag(t *testing.T) {
	w := buff.NewWriter(make([]byte, 0, 32))
	w.BeginMessage(0)
	w.PushUint8(0xff)
	w.EndMessage()

	buf := w.Unwrap()
	frame := buf[5:]

	_, err := ParseFrame(buff.SimpleReader(frame))
	assert.Error(t, err)
}

func TestRootPos(t *testing.T) {
	_, ok := Descriptor{}.RootPos()
	assert.False(t, ok)

	_, ok = Descriptor{Type: BaseScalar, ID: int64ID}.RootPos()
	assert.True(t, ok)
}
