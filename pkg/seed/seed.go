// Package seed derives the reproducible seed for one generation run.
//
// A seed is the SHA-256 digest of the UTF-8 date string, read as a 256-bit
// big-endian unsigned integer (the hex digest parsed as base 16). The same
// date string always yields the same seed on every platform.
//
// Changing the hash or the digest-to-integer mapping breaks every
// previously generated image, so both are fixed here and pinned by tests.
//
//	s := seed.Derive("2024-06-01")
//	fmt.Println(s)       // decimal integer
//	fmt.Println(s.Hex()) // 64 hex characters
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// Seed is the 256-bit digest that fully determines one run.
type Seed [Size]byte

// Derive hashes date into a Seed. Any string is accepted.
func Derive(date string) Seed {
	return Seed(sha256.Sum256([]byte(date)))
}

// Int returns the seed as a non-negative big integer.
func (s Seed) Int() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

// String returns the seed as a decimal integer.
func (s Seed) String() string {
	return s.Int().String()
}

// Hex returns the canonical lowercase hex digest.
func (s Seed) Hex() string {
	return hex.EncodeToString(s[:])
}

// PCG returns the two words used to seed the random stream: the top 128
// bits of the integer, split into big-endian halves.
func (s Seed) PCG() (hi, lo uint64) {
	return binary.BigEndian.Uint64(s[0:8]), binary.BigEndian.Uint64(s[8:16])
}

// Today returns now's calendar date as YYYY-MM-DD in now's location.
func Today(now time.Time) string {
	return now.Format(errors.DateLayout)
}

// ParseDate validates s as YYYY-MM-DD and returns it unchanged.
func ParseDate(s string) (string, error) {
	if err := errors.ValidateDate(s); err != nil {
		return "", err
	}
	return s, nil
}

// Dates returns every date from start to end inclusive.
// Both bounds must be valid dates and start must not be after end.
func Dates(start, end string) ([]string, error) {
	from, err := time.Parse(errors.DateLayout, start)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "invalid start date %q", start)
	}
	to, err := time.Parse(errors.DateLayout, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "invalid end date %q", end)
	}
	if to.Before(from) {
		return nil, errors.New(errors.ErrCodeInvalidDate, "end date %s is before start date %s", end, start)
	}

	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(errors.DateLayout))
	}
	return out, nil
}
