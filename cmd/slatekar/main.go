package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/slate/utility/kar"
)

// slatekar bundles resource files into a kar archive, or lists the
// contents of an existing one.

var (
	output = flag.String("o", "resources.kar", "archive file to write")
	list   = flag.String("l", "", "list the contents of an archive instead of building")
	author = flag.String("author", "", "author recorded in the archive header")
)

func main() {
	flag.Parse()

	if *list != "" {
		if err := listArchive(*list); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: slatekar [-o archive.kar] file...")
		fmt.Fprintln(os.Stderr, "       slatekar -l archive.kar")
		os.Exit(2)
	}

	if err := buildArchive(*output, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func buildArchive(out string, files []string) error {
	builder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(path)
		if err := builder.Add(name, data); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"file": name,
			"size": len(data),
		}).Info("Added")
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	written, err := builder.WriteTo(f)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"archive": out,
		"files":   len(files),
		"bytes":   written,
	}).Info("Archive written")
	return nil
}

func listArchive(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	archive, err := kar.Open(f)
	if err != nil {
		return err
	}

	header := archive.Header()
	created := time.Unix(header.DateCreated, 0).Format(time.RFC3339)
	fmt.Printf("author=%q created=%s version=%d\n", header.Author, created, header.Version)
	for _, entry := range header.Index {
		fmt.Printf("%12d %12d %s\n", entry.Size, entry.CompressedSize, entry.Name)
	}
	return nil
}
