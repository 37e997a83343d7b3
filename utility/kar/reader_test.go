package kar_test

import (
	"bytes"
	"testing"

	"github.com/devblok/slate/utility/kar"
)

func TestOpenRejectsWrongMagic(t *testing.T) {
	data := buildTestArchive(t)
	data[0] = 'T'

	if _, err := kar.Open(bytes.NewReader(data)); err != kar.ErrFileFormat {
		t.Errorf("expected ErrFileFormat, got %v", err)
	}
}

func TestOpenRejectsTruncatedHeader(t *testing.T) {
	data := buildTestArchive(t)

	if _, err := kar.Open(bytes.NewReader(data[:16])); err == nil {
		t.Error("expected an error on a truncated archive")
	}
}

func TestOpenHeaderRoundTrip(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildTestArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	header := ar.Header()
	if header.Author != "devblok" {
		t.Errorf("author %q did not survive the round trip", header.Author)
	}
	if header.Version != 1 {
		t.Errorf("version %d did not survive the round trip", header.Version)
	}
	if len(header.Index) != 2 {
		t.Errorf("expected 2 index entries, got %d", len(header.Index))
	}
}
