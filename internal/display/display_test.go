package display

import (
	"testing"

	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
)

func frameFormat(w, h uint) frame.Format {
	return frame.Format{Width: w, Height: h, DispW: w, DispH: h}
}

func TestScaleNoAspect(t *testing.T) {
	x, y, w, h := Scale(640, 480, 1920, 1080, true)
	if x != 0 || y != 0 || w != 1920 || h != 1080 {
		t.Fatalf("got (%d,%d,%d,%d)", x, y, w, h)
	}
}

func TestScalePreservesAspectPillarbox(t *testing.T) {
	// 4:3 source onto a 16:9 surface: should letterbox on the width axis
	// (pillarbox), centered horizontally, full height.
	x, y, w, h := Scale(640, 480, 1920, 1080, false)
	if h != 1080 {
		t.Fatalf("h = %d, want 1080", h)
	}
	if y != 0 {
		t.Fatalf("y = %d, want 0", y)
	}
	if w >= 1920 {
		t.Fatalf("w = %d, want < 1920", w)
	}
	if x == 0 {
		t.Fatalf("x = %d, want centered offset > 0", x)
	}
}

func TestFitFormatFullscreenScales(t *testing.T) {
	sf := frameFormat(640, 480)
	df := frameFormat(1920, 1080)
	FitFormat(&df, sf, driver.Fullscreen, false)
	if df.DispW == sf.DispW && df.DispH == sf.DispH {
		t.Fatalf("expected fullscreen to rescale, got unchanged %dx%d", df.DispW, df.DispH)
	}
}

func TestFitFormatWindowedCenters(t *testing.T) {
	sf := frameFormat(320, 240)
	df := frameFormat(1920, 1080)
	FitFormat(&df, sf, 0, false)
	if df.DispW != sf.DispW || df.DispH != sf.DispH {
		t.Fatalf("windowed fit should preserve source size, got %dx%d", df.DispW, df.DispH)
	}
	if df.DispX == 0 || df.DispY == 0 {
		t.Fatalf("expected centered offset, got (%d,%d)", df.DispX, df.DispY)
	}
}
