package validation

import (
	"os"
	"path/filepath"
	"testing"
)

var defaultCarriers = []string{"Y"}

func TestValidateMissingFile(t *testing.T) {
	r := Validate(filepath.Join(t.TempDir(), "missing.mp4"), 0, defaultCarriers, 3)
	if r.Exists {
		t.Error("Exists = true for a missing path")
	}
	if r.OK() {
		t.Error("OK() = true for a missing path")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", r.Errors)
	}
}

func TestValidateDirectory(t *testing.T) {
	r := Validate(t.TempDir(), 0, defaultCarriers, 3)
	if !r.Exists {
		t.Error("Exists = false for a directory that does exist")
	}
	if r.OK() {
		t.Error("OK() = true for a directory path")
	}
}

func TestValidateEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mp4")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := Validate(path, 0, defaultCarriers, 3)
	if r.OK() {
		t.Error("OK() = true for an empty file")
	}
}

func TestValidateExceedsMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.mp4")
	if err := os.WriteFile(path, []byte("ftypdata and then some bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Validate(path, 4, defaultCarriers, 3) // ceiling far below the file's actual size
	if r.OK() {
		t.Error("OK() = true for a file over the size ceiling")
	}
}

func TestValidateUnrecognizedSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notavideo.mp4")
	if err := os.WriteFile(path, []byte("this is plain text, not a container"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Validate(path, 0, defaultCarriers, 3)
	if r.OK() {
		t.Error("OK() = true for a file with no recognized magic bytes")
	}
	if r.Readable != true {
		t.Error("Readable should be true; the path/size layer passed before the signature check")
	}
}

func TestHasRecognizedSignatureMP4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	// "ftyp" at offset 4, as real MP4/MOV containers place it.
	body := append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	if !hasRecognizedSignature(path) {
		t.Error("expected MP4 ftyp signature to be recognized")
	}
}

func TestHasRecognizedSignatureMKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mkv")
	body := []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0, 0, 0}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	if !hasRecognizedSignature(path) {
		t.Error("expected MKV EBML signature to be recognized")
	}
}

func TestCheckPath(t *testing.T) {
	dir := t.TempDir()

	if err := CheckPath(filepath.Join(dir, "missing.mp4"), 0); err == nil {
		t.Error("expected error for a missing path")
	}
	if err := CheckPath(dir, 0); err == nil {
		t.Error("expected error for a directory")
	}

	empty := filepath.Join(dir, "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckPath(empty, 0); err == nil {
		t.Error("expected error for an empty file")
	}

	good := filepath.Join(dir, "clip.mp4")
	body := append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...)
	if err := os.WriteFile(good, body, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckPath(good, 0); err != nil {
		t.Errorf("well-formed header should pass: %v", err)
	}
	if err := CheckPath(good, 4); err == nil {
		t.Error("expected error when the file exceeds the size ceiling")
	}

	text := filepath.Join(dir, "notes.mp4")
	if err := os.WriteFile(text, []byte("plain text, no container header"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckPath(text, 0); err == nil {
		t.Error("expected error for an unrecognized signature")
	}
}

func TestComputeCapacity(t *testing.T) {
	c := computeCapacity(64, 64, []string{"Y"}, 3)
	if c.AvailableBlocks != 64 {
		t.Errorf("AvailableBlocks = %d, want 64", c.AvailableBlocks)
	}
	if want := 64 / 3 / 8; c.MaxPayloadBytes != want {
		t.Errorf("MaxPayloadBytes = %d, want %d", c.MaxPayloadBytes, want)
	}
}

func TestComputeCapacityZeroRedundancyTreatedAsOne(t *testing.T) {
	c := computeCapacity(64, 64, []string{"Y"}, 0)
	if c.Redundancy != 1 {
		t.Errorf("Redundancy = %d, want 1 (floor)", c.Redundancy)
	}
}

func TestOKReportsErrorFreeReport(t *testing.T) {
	r := &Report{}
	if !r.OK() {
		t.Error("OK() = false for a Report with no Errors")
	}
	r.Warnings = append(r.Warnings, "just a warning")
	if !r.OK() {
		t.Error("warnings alone should not fail OK()")
	}
	r.Errors = append(r.Errors, "boom")
	if r.OK() {
		t.Error("OK() = true despite a recorded error")
	}
}
