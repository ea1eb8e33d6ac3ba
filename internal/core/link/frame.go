package link

import (
	"encoding/binary"
	"fmt"
	"io"
)

// frameHeaderSize 长度前缀字节数
const frameHeaderSize = 4

// WriteFrame 写入一帧（长度 + 内容）
func WriteFrame(w io.Writer, msg []byte, maxSize int) error {
	if len(msg) > maxSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(msg), maxSize)
	}
	buf := make([]byte, frameHeaderSize+len(msg))
	binary.BigEndian.PutUint32(buf, uint32(len(msg)))
	copy(buf[frameHeaderSize:], msg)
	_, err := w.Write(buf)
	return err
}

// ReadFrame 读取一帧
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if uint64(n) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, maxSize)
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(r, msg); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return msg, nil
}
