package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frames on the sensor link are a 4-byte little-endian payload length
// followed by the payload.
const headerLen = 4

var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// ReadFrame reads one frame. io.EOF is returned only when the stream ends
// cleanly on a frame boundary; a frame cut short yields io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	n := binary.LittleEndian.Uint32(hdr[:])
	if max > 0 && uint64(n) > uint64(max) {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, n, max)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	buf := make([]byte, headerLen+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerLen:], payload)
	_, err := w.Write(buf)
	return err
}
