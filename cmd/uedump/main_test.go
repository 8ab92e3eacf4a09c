package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skdltmxn/uedump/internal/fixture"
	"github.com/skdltmxn/uedump/memory"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    memory.Address
		wantErr bool
	}{
		{in: "0x140000000", want: 0x140000000},
		{in: "0X7FF6A0000000", want: 0x7FF6A0000000},
		{in: "deadbeef", want: 0xDEADBEEF},
		{in: "", wantErr: true},
		{in: "0xZZ", wantErr: true},
		{in: "0x10000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAddress(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDumpCommand(t *testing.T) {
	w := fixture.New(nil)
	vec := w.ScriptStruct(w.Engine, "Vector", memory.Null, 0xC)
	w.AddProp(vec, fixture.Prop{Class: "FloatProperty", Name: "X", Offset: 0, ElementSize: 4})
	w.Enum(w.Engine, "ENetMode", "ENetMode::NM_Standalone")

	dir := t.TempDir()
	snap := filepath.Join(dir, "game.uesnap")
	f, err := os.Create(snap)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSnapshot(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	sdkDir := filepath.Join(dir, "SDK")
	summary := filepath.Join(dir, "summary.txt")
	rootCmd.SetArgs([]string{"dump", snap, "--dir", sdkDir, "--package", "Engine", "-j", "2", "-o", summary, "--log-level", "none"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, err := os.ReadFile(summary)
	if err != nil {
		t.Fatal(err)
	}
	want := "Packages: 1\nClasses: 1\nStructs: 1\nEnums: 1\nDropped: 0\nWritten to: " + sdkDir + "\n"
	if string(got) != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	for _, name := range []string{"Engine_classes.h", "Engine_struct.h"} {
		if _, err := os.Stat(filepath.Join(sdkDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}
