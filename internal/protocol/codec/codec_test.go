package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

func TestEncodeDecode_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
	}{
		{"json", FormatJSON},
		{"protobuf", FormatProtobuf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := MustNewMessage(protocol.MsgWordHint, protocol.WordHintPayload{
				Position:   2,
				Char:       "c",
				MaskedWord: "_ _ c _ _ _",
			})

			data, err := Encode(tt.format, msg)
			require.NoError(t, err)

			decoded, err := Decode(tt.format, data)
			require.NoError(t, err)
			defer PutMessage(decoded)

			assert.Equal(t, protocol.MsgWordHint, decoded.Type)

			hint, err := ParsePayload[protocol.WordHintPayload](decoded)
			require.NoError(t, err)
			assert.Equal(t, 2, hint.Position)
			assert.Equal(t, "c", hint.Char)
			assert.Equal(t, "_ _ c _ _ _", hint.MaskedWord)
		})
	}
}

func TestEncodeDecode_NoPayload(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatProtobuf} {
		data, err := Encode(format, MustNewMessage(protocol.MsgStartGame, nil))
		require.NoError(t, err)

		decoded, err := Decode(format, data)
		require.NoError(t, err)
		assert.Equal(t, protocol.MsgStartGame, decoded.Type)
		assert.Empty(t, decoded.Payload)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode(FormatJSON, []byte("not json"))
	assert.Error(t, err)

	_, err = Decode(FormatJSON, []byte(`{"payload":{}}`))
	assert.Error(t, err, "missing type must be rejected")

	_, err = Decode(FormatProtobuf, []byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatProtobuf, ParseFormat("protobuf"))
	assert.Equal(t, FormatProtobuf, ParseFormat("proto"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
	assert.Equal(t, "protobuf", FormatProtobuf.String())
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeRoomNotFound)
	assert.Equal(t, protocol.MsgError, msg.Type)

	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeRoomNotFound], payload.Message)
}
