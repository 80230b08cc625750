// Package sink encodes canvases and persists them as date-named files.
package sink

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatJPG  = "jpg"
	FormatGIF  = "gif"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatPNG

// JPEGQuality is the encoder quality for jpeg output.
const JPEGQuality = 95

// ThumbDir is the subdirectory thumbnails are written to.
const ThumbDir = "thumbs"

var formats = map[string]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatJPEG: imaging.JPEG,
	FormatJPG:  imaging.JPEG,
	FormatGIF:  imaging.GIF,
	FormatTIFF: imaging.TIFF,
	FormatBMP:  imaging.BMP,
}

var contentTypes = map[imaging.Format]string{
	imaging.PNG:  "image/png",
	imaging.JPEG: "image/jpeg",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// Formats returns the accepted format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for f := range formats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Normalize lowercases a format name and strips a leading dot.
// An empty name yields DefaultFormat.
func Normalize(format string) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if f == "" {
		return DefaultFormat
	}
	return f
}

// ValidateFormat reports INVALID_FORMAT for unsupported names.
func ValidateFormat(format string) error {
	if _, ok := formats[Normalize(format)]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (must be one of: %s)", format, strings.Join(Formats(), ", "))
	}
	return nil
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	if f, ok := formats[Normalize(format)]; ok {
		return contentTypes[f]
	}
	return "application/octet-stream"
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	f := formats[Normalize(format)]
	var opts []imaging.EncodeOption
	if f == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(JPEGQuality))
	}
	if err := imaging.Encode(w, img, f, opts...); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", Normalize(format))
	}
	return nil
}

// Bytes encodes img into a byte slice.
func Bytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an image previously written by Encode.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode image")
	}
	return img, nil
}

// Path returns <dir>/<date>.<format>.
func Path(dir, date, format string) string {
	return filepath.Join(dir, date+"."+Normalize(format))
}

// ThumbPath returns <dir>/thumbs/<date>.png.
func ThumbPath(dir, date string) string {
	return filepath.Join(dir, ThumbDir, date+"."+FormatPNG)
}

// Save writes already-encoded data to Path(dir, date, format).
// The file appears atomically: data goes to a temp file in the same
// directory which is then renamed over the target.
func Save(dir, date, format string, data []byte) (string, error) {
	if err := errors.ValidateOutputDir(dir); err != nil {
		return "", err
	}
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	path := Path(dir, date, format)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SaveThumbnail scales img down to fit size x size and writes it as PNG
// under <dir>/thumbs.
func SaveThumbnail(dir, date string, img image.Image, size int) (string, error) {
	if err := errors.ValidateDimensions(size, size); err != nil {
		return "", err
	}
	data, err := Bytes(Thumbnail(img, size), FormatPNG)
	if err != nil {
		return "", err
	}
	path := ThumbPath(dir, date)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Thumbnail fits img into a size x size box, keeping its aspect ratio.
// Images already inside the box are returned unscaled.
func Thumbnail(img image.Image, size int) image.Image {
	return imaging.Fit(img, size, size, imaging.Lanczos)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create output directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create temp file in %s", dir)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeStorage, err, "chmod %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeStorage, err, "rename %s", path)
	}
	return nil
}
