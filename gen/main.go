// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

//go:generate go run main.go
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bep/rawmeta"
	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-multierror"
)

func main() {
	exiftoolDir := "testdata_exiftool"
	thumbsDir := "testdata_thumbs"
	for _, dir := range []string{exiftoolDir, thumbsDir} {
		os.RemoveAll(dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}
	base := filepath.Join("..", "testdata", "raw")

	opts := rawmeta.Options{
		Warnf: func(format string, args ...any) {
			log.Printf("warn: "+format, args...)
		},
	}

	// Thumbnail failures are collected and reported after the walk.
	var thumbErrs *multierror.Error

	if err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		basePath := strings.TrimPrefix(path, base+string(filepath.Separator))

		var buf bytes.Buffer
		cmd := exec.Command("exiftool", path,
			"-json", "-n", "-g", "-e",
			"-x", "FileModifyDate",
			"-x", "FileAccessDate",
			"-x", "FileInodeChangeDate")
		cmd.Stdout = &buf
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return err
		}

		outFilename := filepath.Join(exiftoolDir, basePath+".json")
		if err := os.MkdirAll(filepath.Dir(outFilename), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outFilename, buf.Bytes(), 0o644); err != nil {
			return err
		}

		thumbFilename := filepath.Join(thumbsDir, basePath+".jpg")
		if err := os.MkdirAll(filepath.Dir(thumbFilename), 0o755); err != nil {
			return err
		}
		thumb, err := rawmeta.ThumbnailFile(path, opts)
		if err != nil {
			thumbErrs = multierror.Append(thumbErrs, fmt.Errorf("%s: %w", basePath, err))
			return nil
		}
		if err := os.WriteFile(thumbFilename, thumb.Data, 0o644); err != nil {
			return err
		}
		if err := writeUpright(thumb, filepath.Join(thumbsDir, basePath+".upright.jpg")); err != nil {
			thumbErrs = multierror.Append(thumbErrs, fmt.Errorf("%s: upright: %w", basePath, err))
		}

		return nil
	}); err != nil {
		log.Fatal(err)
	}

	if err := thumbErrs.ErrorOrNil(); err != nil {
		log.Print(err)
	}
}

// writeUpright writes the thumbnail rotated upright and scaled to fit 1024x1024.
func writeUpright(thumb rawmeta.Thumbnail, filename string) error {
	img, err := imaging.Decode(bytes.NewReader(thumb.Data))
	if err != nil {
		return err
	}
	switch thumb.Orientation {
	case rawmeta.Rotate90:
		img = imaging.Rotate270(img)
	case rawmeta.Rotate180:
		img = imaging.Rotate180(img)
	case rawmeta.Rotate270:
		img = imaging.Rotate90(img)
	}
	return imaging.Save(imaging.Fit(img, 1024, 1024, imaging.Lanczos), filename)
}
