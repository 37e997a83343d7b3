// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/devblok/slate/utility/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildTestArchive(t *testing.T) []byte {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test", []byte(testString1)); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test2", []byte(testString2)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := builder.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildTestArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test")
	if err != nil {
		t.Fatal(err)
	}
	if f.Size() != int64(len(testString1)) {
		t.Errorf("reported size %d, want %d", f.Size(), len(testString1))
	}

	result, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Compare(string(result), testString1) != 0 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildTestArchive(t)))
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]string{
		"test":  testString1,
		"test2": testString2,
	} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Error(err)
			continue
		}
		if strings.Compare(string(f), want) != 0 {
			t.Errorf("%s: contents do not match up", name)
		}
	}
}

func TestMissingFile(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildTestArchive(t)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.ReadAll("nosuchfile"); err != kar.ErrFileNotFound {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
