package main

import (
	"os"

	"github.com/gobuffalo/envy"
	"github.com/gogpu/gg/text"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/devblok/slate/utility/kar"
)

const faceSize = 16

// loadFace resolves the text face for the demo scene. Resolution
// order: a font from a kar archive, then a font file on disk, then
// the bundled Go Regular. Never fails, the bundled font always loads.
func loadFace() text.Face {
	archivePath := envy.Get("SLATE_FONT_ARCHIVE", "")
	fontName := envy.Get("SLATE_FONT", "")

	if archivePath != "" && fontName != "" {
		if face := faceFromArchive(archivePath, fontName); face != nil {
			return face
		}
	}
	if fontName != "" {
		if source, err := text.NewFontSourceFromFile(fontName); err != nil {
			log.WithError(err).WithField("font", fontName).Warn("Font file unusable, falling back")
		} else {
			return source.Face(faceSize)
		}
	}

	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		log.WithError(err).Error("Bundled font unusable, text disabled")
		return nil
	}
	return source.Face(faceSize)
}

func faceFromArchive(archivePath, fontName string) text.Face {
	logger := log.WithFields(log.Fields{
		"archive": archivePath,
		"font":    fontName,
	})

	f, err := os.Open(archivePath)
	if err != nil {
		logger.WithError(err).Warn("Font archive unreadable, falling back")
		return nil
	}
	defer f.Close()

	archive, err := kar.Open(f)
	if err != nil {
		logger.WithError(err).Warn("Font archive unusable, falling back")
		return nil
	}
	data, err := archive.ReadAll(fontName)
	if err != nil {
		logger.WithError(err).Warn("Font missing from archive, falling back")
		return nil
	}
	source, err := text.NewFontSource(data)
	if err != nil {
		logger.WithError(err).Warn("Archived font unusable, falling back")
		return nil
	}
	return source.Face(faceSize)
}
