package main

import (
	"bytes"
	stdgzip "compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestWithoutExtension(t *testing.T) {
	cases := map[string]string{
		"archive.tar.gz": "archive.tar",
		"file.gz":        "file",
		"noext":          "noext",
		"dir/sub.gz":     "dir/sub",
	}
	for in, want := range cases {
		if got := withoutExtension(in); got != want {
			t.Errorf("withoutExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunWritesDecompressedFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "data.gz")

	var buf bytes.Buffer
	zw := stdgzip.NewWriter(&buf)
	want := []byte("decompressed via the gzipd CLI's run(args) path")
	if _, err := zw.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := os.WriteFile(inPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := run([]string{inPath}); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("decompressed file content mismatch")
	}
}

func TestRunSimulateWritesNothing(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "data.gz")

	var buf bytes.Buffer
	zw := stdgzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("simulated, never written to disk")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := os.WriteFile(inPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := run([]string{"-s", inPath}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "data")); !os.IsNotExist(err) {
		t.Fatal("expected no output file to be created in simulate mode")
	}
}
