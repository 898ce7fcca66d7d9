package container

import (
	"bytes"
	"io"
	"testing"

	"github.com/snapetech/fbplayer/internal/frame"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	want := Header{Width: 1280, Height: 720, Pixfmt: frame.YUV420P}
	if err := w.WriteHeader(want); err != nil {
		t.Fatal(err)
	}

	got, err := NewReader(&buf).ReadHeader()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewReader(make([]byte, 16))
	if _, err := NewReader(buf).ReadHeader(); err == nil {
		t.Fatal("expected error for missing magic")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	want := []Packet{
		{Payload: []byte{1, 2, 3}, PTS: 0},
		{Payload: []byte{4, 5, 6, 7}, PTS: 40000000},
		{Payload: nil, PTS: 80000000},
	}
	for _, p := range want {
		if err := w.WritePacket(p); err != nil {
			t.Fatal(err)
		}
	}

	r := NewReader(&buf)
	for i, wantPkt := range want {
		got, err := r.ReadPacket()
		if err != nil {
			t.Fatalf("packet %d: %v", i, err)
		}
		if got.PTS != wantPkt.PTS || !bytes.Equal(got.Payload, wantPkt.Payload) {
			t.Fatalf("packet %d: got %+v, want %+v", i, got, wantPkt)
		}
	}

	if _, err := r.ReadPacket(); err != io.EOF {
		t.Fatalf("expected io.EOF at stream end, got %v", err)
	}
}

func TestReadPacketRejectsTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WritePacket(Packet{Payload: []byte{1, 2, 3, 4, 5}}); err != nil {
		t.Fatal(err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])
	r := NewReader(truncated)
	if _, err := r.ReadPacket(); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
