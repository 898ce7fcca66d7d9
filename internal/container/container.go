// Package container implements a minimal framed-packet reader standing
// in for the real demuxer (av_read_frame / AVFormatContext) the
// original engine pulls packets from -- out of scope per the top-level
// scope note, since this engine starts from already-decoded pictures.
// Framing style (fixed big-endian length header, no padding) mirrors
// the length-prefixed packet layout the teacher's own hdhomerun
// package uses for its wire protocol.
package container

import (
	"encoding/binary"
	"io"

	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
)

// headerSize is the byte length of the uint32 payload-length prefix
// written before every packet.
const headerSize = 4

// magic identifies a stream header, standing in for the container
// format probe a real demuxer performs before it ever hands back a
// codec context.
const magic = "FBP1"

// Header carries the elementary stream's negotiated picture geometry
// and pixel format, the fields the reference engine would otherwise
// pull out of AVCodecContext after av_find_stream_info.
type Header struct {
	Width, Height uint
	Pixfmt        frame.PixelFormat
}

// Packet is one demuxed elementary-stream unit: a raw payload and its
// presentation timestamp in nanoseconds.
type Packet struct {
	Payload []byte
	PTS     int64
}

// Reader reads a Header followed by Packets out of a framed stream:
// each packet is a big-endian uint32 payload length, a big-endian
// int64 PTS, then the payload bytes.
type Reader struct {
	r io.Reader
}

// NewReader wraps r as a packet stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadHeader reads the stream header. Callers must call it exactly
// once, before the first ReadPacket.
func (r *Reader) ReadHeader() (Header, error) {
	var buf [4 + 4 + 4 + 4]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return Header{}, fberrors.New("container.ReadHeader", fberrors.DecodeError, err)
	}
	if string(buf[0:4]) != magic {
		return Header{}, fberrors.New("container.ReadHeader", fberrors.UsageError,
			io.ErrUnexpectedEOF)
	}
	return Header{
		Width:  uint(binary.BigEndian.Uint32(buf[4:8])),
		Height: uint(binary.BigEndian.Uint32(buf[8:12])),
		Pixfmt: frame.PixelFormat(binary.BigEndian.Uint32(buf[12:16])),
	}, nil
}

// ReadPacket reads the next packet, or io.EOF when the stream ends
// cleanly on a frame boundary.
func (r *Reader) ReadPacket() (Packet, error) {
	var hdr [headerSize + 8]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Packet{}, fberrors.New("container.ReadPacket", fberrors.DecodeError, err)
		}
		return Packet{}, err
	}

	length := binary.BigEndian.Uint32(hdr[0:4])
	pts := int64(binary.BigEndian.Uint64(hdr[4:12]))

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return Packet{}, fberrors.New("container.ReadPacket", fberrors.DecodeError, err)
	}

	return Packet{Payload: payload, PTS: pts}, nil
}

// Writer frames Packets for a Reader to consume. Used by tests to
// synthesize an input stream.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as a packet-framing sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the stream header. Callers must call it exactly
// once, before the first WritePacket.
func (w *Writer) WriteHeader(h Header) error {
	var buf [4 + 4 + 4 + 4]byte
	copy(buf[0:4], magic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.Width))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.Height))
	binary.BigEndian.PutUint32(buf[12:16], uint32(h.Pixfmt))
	_, err := w.w.Write(buf[:])
	return err
}

// WritePacket writes one framed packet.
func (w *Writer) WritePacket(p Packet) error {
	var hdr [headerSize + 8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(p.Payload)))
	binary.BigEndian.PutUint64(hdr[4:12], uint64(p.PTS))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.w.Write(p.Payload)
	return err
}
