package rawframe

import (
	"context"
	"testing"

	"github.com/snapetech/fbplayer/internal/codec"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/memman/heapmem"
	"github.com/snapetech/fbplayer/internal/pool"
)

func TestDecodeCopiesPlanes(t *testing.T) {
	d := &Decoder{}
	params := codec.OpenParams{Width: 4, Height: 4, Pixfmt: frame.YUV420P}

	fmt_, err := d.Open("raw", params, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	alloc := heapmem.Allocator{}
	frames, err := alloc.Alloc(fmt_, 1<<20, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	p, err := pool.New(frames)
	if err != nil {
		t.Fatal(err)
	}
	d.pool = p

	pkt := make([]byte, 4*4+2*2+2*2)
	for i := range pkt {
		pkt[i] = byte(i + 1)
	}

	f, err := d.Decode(context.Background(), pkt, 0)
	if err != nil {
		t.Fatal(err)
	}
	if f.PicNum != 1 {
		t.Fatalf("PicNum = %d, want 1", f.PicNum)
	}

	off := int(fmt_.DispY)*fmt_.YStride + int(fmt_.DispX)
	if f.Virt[0][off] != 1 {
		t.Fatalf("Y[0] = %d, want 1", f.Virt[0][off])
	}
}

func TestOpenRejectsInterleavedFormat(t *testing.T) {
	d := &Decoder{}
	_, err := d.Open("raw", codec.OpenParams{Width: 4, Height: 4, Pixfmt: frame.YUYV422}, nil, "")
	if err == nil {
		t.Fatal("expected error for interleaved format")
	}
}
