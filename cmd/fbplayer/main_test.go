package main

import "testing"

func TestRunReturnsNonzeroOnMissingArgs(t *testing.T) {
	if code := run(nil); code != 1 {
		t.Fatalf("run(nil) = %d, want 1", code)
	}
}

func TestRunReturnsNonzeroOnMissingInputFile(t *testing.T) {
	if code := run([]string{"/nonexistent/stream.fbp"}); code != 1 {
		t.Fatalf("run = %d, want 1", code)
	}
}
