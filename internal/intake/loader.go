// Package intake turns paths on disk into uploaded files: it sniffs the
// media type, reads the bytes and extracts preview metadata.
package intake

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gobwas/glob"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/log"
	"leafscan/internal/upload"
	"leafscan/pkg/types"
)

var registerParsers sync.Once

// Analyzer fills in metadata for files it can handle
type Analyzer interface {
	// CanHandle checks if this analyzer is suitable for the given media type
	CanHandle(mediaType string) bool
	// Analyze updates the file's metadata from its bytes
	Analyze(file *types.UploadedFile) error
}

// DimensionsAnalyzer reads the image header for width and height
type DimensionsAnalyzer struct{}

// CanHandle accepts any image type
func (a *DimensionsAnalyzer) CanHandle(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// Analyze decodes the image configuration only, not the pixels
func (a *DimensionsAnalyzer) Analyze(file *types.UploadedFile) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return err
	}
	file.Meta.Width = cfg.Width
	file.Meta.Height = cfg.Height
	return nil
}

// ExifAnalyzer extracts camera model and capture time
type ExifAnalyzer struct{}

// CanHandle accepts the formats that carry EXIF blocks
func (a *ExifAnalyzer) CanHandle(mediaType string) bool {
	return mediaType == "image/jpeg" || mediaType == "image/tiff"
}

// Analyze reads EXIF tags. Missing EXIF data is not an error.
func (a *ExifAnalyzer) Analyze(file *types.UploadedFile) error {
	x, err := exif.Decode(bytes.NewReader(file.Data))
	if err != nil {
		log.LogWithFields(log.F("file", file.Name)).Debugf("no EXIF data: %v", err)
		return nil
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if model, _ := tag.StringVal(); model != "" {
			file.Meta.CameraModel = strings.TrimSpace(model)
		}
	}
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if dt, _ := tag.StringVal(); dt != "" {
			file.Meta.TakenAt = dt
		}
	}
	return nil
}

// Loader reads image files from disk.
type Loader struct {
	maxSize   int64
	patterns  []glob.Glob
	analyzers []Analyzer
}

// NewLoader creates a loader accepting names that match any of patterns.
func NewLoader(patterns []string) (*Loader, error) {
	registerParsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	l := &Loader{maxSize: upload.MaxFileSize}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, errors.NewConfigError("invalid intake pattern", p, errors.InvalidConfig, err)
		}
		l.patterns = append(l.patterns, g)
	}
	l.analyzers = []Analyzer{&DimensionsAnalyzer{}, &ExifAnalyzer{}}
	return l, nil
}

// FromConfig creates a loader from the intake section of cfg
func FromConfig(cfg *config.Config) (*Loader, error) {
	return NewLoader(cfg.Intake.Patterns)
}

// Accepts reports whether the file name matches an intake pattern,
// ignoring case.
func (l *Loader) Accepts(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, g := range l.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Load reads the file at path. Files larger than the upload limit are not
// read: they come back with their size and sniffed type but no data, so the
// upload machine rejects them.
func (l *Loader) Load(path string) (*types.UploadedFile, error) {
	logger := log.LogWithFields(log.F("path", path))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("failed to stat file", path, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("failed to stat file", path, errors.FileAccessDenied, err)
	}
	if info.IsDir() {
		return nil, errors.NewFileError("not a regular file", path, errors.FileReadFailed, nil)
	}

	file := &types.UploadedFile{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
	}

	if file.Size > l.maxSize {
		mediaType, err := sniffFile(path)
		if err != nil {
			return nil, err
		}
		file.MediaType = mediaType
		logger.Debugf("file exceeds upload limit, skipping read (%d bytes)", file.Size)
		return file, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError("failed to read file", path, errors.FileReadFailed, err)
	}
	file.Data = data
	file.Size = int64(len(data))
	file.MediaType = mimetype.Detect(data).String()

	for _, a := range l.analyzers {
		if !a.CanHandle(file.MediaType) {
			continue
		}
		if err := a.Analyze(file); err != nil {
			logger.Debugf("metadata extraction failed: %v", err)
		}
	}

	logger.With(log.F("media_type", file.MediaType), log.F("size", file.Size)).Debug("file loaded")
	return file, nil
}

func sniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewFileError("failed to open file", path, errors.FileAccessDenied, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil && err != io.EOF {
		return "", errors.NewFileError("failed to detect media type", path, errors.FileReadFailed, err)
	}
	return mt.String(), nil
}
