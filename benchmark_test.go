package umat

import (
	"os"
	"testing"
)

func BenchmarkReadBytes(b *testing.B) {
	path := exportPath("Texture", "Brick01")
	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	ref, err := ReferenceFromPath(path)
	if err != nil {
		b.Fatalf("ref: %v", err)
	}

	b.SetBytes(int64(len(data)))
	for b.Loop() {
		if _, err := ReadBytes(ref, data, nil); err != nil {
			b.Fatalf("read bytes: %v", err)
		}
	}
}

func BenchmarkFormatSequence(b *testing.B) {
	m, err := ReadFile(exportPath("MaterialSequence", "Seq"), nil)
	if err != nil {
		b.Fatalf("read: %v", err)
	}

	for b.Loop() {
		if _, err := Format(m, nil); err != nil {
			b.Fatalf("format: %v", err)
		}
	}
}

func BenchmarkReferences(b *testing.B) {
	m, err := ReadFile(exportPath("MaterialSwitch", "Switch"), nil)
	if err != nil {
		b.Fatalf("read: %v", err)
	}

	for b.Loop() {
		for range References(m) {
		}
	}
}
