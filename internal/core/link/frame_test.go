package link

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("hello"), 16))
	require.NoError(t, WriteFrame(&buf, nil, 16))

	assert.Equal(t, []byte{0, 0, 0, 5}, buf.Bytes()[:4])

	msg, err := ReadFrame(&buf, 16)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg))

	msg, err = ReadFrame(&buf, 16)
	require.NoError(t, err)
	assert.Empty(t, msg)

	_, err = ReadFrame(&buf, 16)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrame_Limits(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"超长帧", []byte{0, 0, 1, 0}, ErrFrameTooLarge},
		{"截断内容", []byte{0, 0, 0, 4, 'a'}, io.ErrUnexpectedEOF},
		{"截断长度", []byte{0, 0}, io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.data), 16)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	err := WriteFrame(io.Discard, make([]byte, 17), 16)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}
