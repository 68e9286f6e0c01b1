package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	SetLevel(Warning)
	defer SetLevel(Notice)

	logger := New("test")
	logger.Info("hidden")
	logger.Warning("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected warning message tagged with module name; got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	type spec struct {
		name   string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"warning", Warning, false},
		{"verbose", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.name)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, level)
		}
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	if err := Configure("warning, bvh builder=debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer SetModuleLevel("bvh builder", Notice)

	New("bvh builder").Debug("builder detail")
	New("scene compiler").Info("compiler detail")

	out := buf.String()
	if !strings.Contains(out, "builder detail") {
		t.Fatalf("expected module level override to enable debug output; got %q", out)
	}
	if strings.Contains(out, "compiler detail") {
		t.Fatalf("expected default level to filter info output; got %q", out)
	}

	if err := Configure("notice,compiler=loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
