package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meridianlab/paperlens/internal/corpus"
)

func TestArtifactInfos(t *testing.T) {
	dir := t.TempDir()
	payload := make([]byte, 2048)
	if err := os.WriteFile(filepath.Join(dir, corpus.TitleVectorsFile), payload, 0o644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}

	infos := artifactInfos(dir)
	if len(infos) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(infos))
	}

	byFile := make(map[string]int64, len(infos))
	for _, a := range infos {
		byFile[a.File] = a.Bytes
	}
	if byFile[corpus.TitleVectorsFile] != 2048 {
		t.Errorf("title artifact size = %d, want 2048", byFile[corpus.TitleVectorsFile])
	}
	if byFile[corpus.NeighborsFile] != 0 {
		t.Errorf("uncached artifact size = %d, want 0", byFile[corpus.NeighborsFile])
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
