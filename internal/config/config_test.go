package config

import "testing"

func TestParseRequiresInputFileOrTestPattern(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected usage error for missing input file")
	}
}

func TestParsePositionalInputFile(t *testing.T) {
	opt, err := Parse([]string{"-d", "mem", "movie.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if opt.InputFile != "movie.ts" {
		t.Fatalf("InputFile = %q", opt.InputFile)
	}
	if opt.DisplayDriver != "mem" {
		t.Fatalf("DisplayDriver = %q", opt.DisplayDriver)
	}
	if opt.PoolBudgetBytes != defaultPoolBudgetMB*1048576 {
		t.Fatalf("PoolBudgetBytes = %d", opt.PoolBudgetBytes)
	}
}

func TestParseFCapitalImpliesFullscreen(t *testing.T) {
	opt, err := Parse([]string{"-F", "movie.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if !opt.Fullscreen || !opt.NoAspect {
		t.Fatalf("got Fullscreen=%v NoAspect=%v, want both true", opt.Fullscreen, opt.NoAspect)
	}
}

func TestParseTestPatternSkipsInputFileRequirement(t *testing.T) {
	opt, err := Parse([]string{"-t", "640x480x100"})
	if err != nil {
		t.Fatal(err)
	}
	if opt.TestPattern != "640x480x100" {
		t.Fatalf("TestPattern = %q", opt.TestPattern)
	}
}

func TestParseTestPatternRejectsMalformed(t *testing.T) {
	if _, err := Parse([]string{"-t", "not-a-size"}); err == nil {
		t.Fatal("expected error for malformed -t argument")
	}
}

func TestParseTestPatternSize(t *testing.T) {
	got, err := ParseTestPattern("1920x1080x50")
	if err != nil {
		t.Fatal(err)
	}
	want := TestPatternSize{Width: 1920, Height: 1080, Frames: 50}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseTestPatternRejectsZeroFrames(t *testing.T) {
	if _, err := ParseTestPattern("640x480x0"); err == nil {
		t.Fatal("expected error for zero frame count")
	}
}
