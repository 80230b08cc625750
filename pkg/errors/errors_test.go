package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidDimensions, "width must be positive, got %d", 0), "INVALID_DIMENSIONS: width must be positive, got 0"},
		{"wrap", Wrap(ErrCodeStorage, fs.ErrPermission, "write %s", "art/2024-01-01.png"), "STORAGE_ERROR: write art/2024-01-01.png: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapChain(t *testing.T) {
	err := fmt.Errorf("save: %w", Wrap(ErrCodeStorage, fs.ErrPermission, "write"))

	if !errors.Is(err, fs.ErrPermission) {
		t.Error("cause lost through Wrap")
	}
	if !Is(err, ErrCodeStorage) || GetCode(err) != ErrCodeStorage {
		t.Errorf("code lost through fmt wrapping: %q", GetCode(err))
	}
	if UserMessage(err) != "write" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching", New(ErrCodeInvalidPalette, "x"), ErrCodeInvalidPalette, true},
		{"other code", New(ErrCodeInvalidPalette, "x"), ErrCodeInvalidStyle, false},
		{"outermost code wins", Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStorage, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
			if tt.want && GetCode(tt.err) != tt.code {
				t.Errorf("GetCode() = %q, want %q", GetCode(tt.err), tt.code)
			}
		})
	}
	if GetCode(errors.New("plain")) != "" || GetCode(nil) != "" {
		t.Error("GetCode of a foreign error should be empty")
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("disk full")); got != "disk full" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestIsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"dimensions", New(ErrCodeInvalidDimensions, "bad"), true},
		{"date", New(ErrCodeInvalidDate, "bad"), true},
		{"style", New(ErrCodeInvalidStyle, "bad"), true},
		{"palette", New(ErrCodeInvalidPalette, "bad"), true},
		{"wrapped format", Wrap(ErrCodeInvalidFormat, errors.New("x"), "bad"), true},
		{"allocation", New(ErrCodeAllocation, "too big"), false},
		{"config", New(ErrCodeInvalidConfig, "bad"), false},
		{"storage", New(ErrCodeStorage, "disk"), false},
		{"plain", errors.New("plain"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidInput(tt.err); got != tt.want {
				t.Errorf("IsInvalidInput() = %v, want %v", got, tt.want)
			}
		})
	}
}
