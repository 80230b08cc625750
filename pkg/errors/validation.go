package errors

import (
	"strings"
	"time"
	"unicode"
)

// DateLayout is the ISO 8601 calendar date layout used for seeds and file names.
const DateLayout = "2006-01-02"

// MaxPixels bounds width*height for a single canvas (roughly 1 GiB of RGBA).
const MaxPixels = 1 << 28

// ValidateDimensions checks canvas dimensions before anything is allocated.
//
// Non-positive sizes yield ErrCodeInvalidDimensions. Sizes whose pixel count
// exceeds MaxPixels yield ErrCodeAllocation, since the buffer could not be
// created.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "dimensions must be positive, got %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxPixels {
		return New(ErrCodeAllocation, "canvas %dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	return nil
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
//
// The seed derivation accepts any string; this check exists for user input
// because the date also becomes a file name.
func ValidateDate(s string) error {
	if s == "" {
		return New(ErrCodeInvalidDate, "date cannot be empty")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Wrap(ErrCodeInvalidDate, err, "date must be YYYY-MM-DD, got %q", s)
	}
	return nil
}

// ValidateOutputDir validates an output directory path.
//
// Absolute paths are allowed (the CLI writes wherever the user asks), but
// null bytes and control characters are rejected.
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 4096
	if len(dir) > maxPathLength {
		return New(ErrCodeInvalidPath, "output directory too long (max %d characters)", maxPathLength)
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output directory contains invalid characters")
		}
	}
	return nil
}

// ValidateName validates a short identifier such as a palette or style name.
func ValidateName(code Code, kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(code, "%s name cannot be empty", kind)
	}
	if len(name) > 128 {
		return New(code, "%s name too long (max 128 characters)", kind)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s name contains invalid control characters", kind)
		}
	}
	return nil
}
