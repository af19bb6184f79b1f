package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/model"
)

func TestBuildArchive(t *testing.T) {
	files := []*model.File{
		{ID: "1", Name: "a.txt"},
		{ID: "2", Name: "a.txt"},
		{ID: "3", Name: "b.txt"},
	}

	contents := map[string]string{
		"1": "first",
		"2": "second",
		"3": "third",
	}

	var buf bytes.Buffer

	err := buildArchive(context.Background(), files, func(_ context.Context, f *model.File) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(contents[f.ID])), nil
	}, &buf)
	if err != nil {
		t.Fatalf("build archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	want := map[string]string{
		"a.txt":     "first",
		"a.txt (2)": "second",
		"b.txt":     "third",
	}

	if len(zr.File) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(zr.File))
	}

	for _, entry := range zr.File {
		expected, ok := want[entry.Name]
		if !ok {
			t.Fatalf("unexpected entry %q", entry.Name)
		}

		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", entry.Name, err)
		}

		data, err := io.ReadAll(rc)
		rc.Close()

		if err != nil {
			t.Fatalf("read entry %q: %v", entry.Name, err)
		}

		if string(data) != expected {
			t.Fatalf("entry %q: expected %q, got %q", entry.Name, expected, data)
		}
	}
}

func TestBuildArchiveFetchFailure(t *testing.T) {
	files := []*model.File{
		{ID: "1", Name: "ok.txt"},
		{ID: "2", Name: "broken.txt"},
	}

	var buf bytes.Buffer

	err := buildArchive(context.Background(), files, func(_ context.Context, f *model.File) (io.ReadCloser, error) {
		if f.ID == "2" {
			return nil, errors.New("object gone")
		}

		return io.NopCloser(strings.NewReader("data")), nil
	}, &buf)
	if err != nil {
		t.Fatalf("build archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	names := make(map[string]bool, len(zr.File))
	for _, entry := range zr.File {
		names[entry.Name] = true
	}

	if !names["ok.txt"] || !names["broken.txt.error.txt"] {
		t.Fatalf("unexpected entries: %v", names)
	}
}

func TestArchiveEntryName(t *testing.T) {
	used := make(map[string]int)

	if got := archiveEntryName("a.txt", used); got != "a.txt" {
		t.Fatalf("first: got %q", got)
	}

	if got := archiveEntryName("a.txt", used); got != "a.txt (2)" {
		t.Fatalf("second: got %q", got)
	}

	if got := archiveEntryName("a.txt", used); got != "a.txt (3)" {
		t.Fatalf("third: got %q", got)
	}

	if got := archiveEntryName("b.txt", used); got != "b.txt" {
		t.Fatalf("other name: got %q", got)
	}
}
