package directory

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"unicode/utf8"
)

// MaxNameLength is the longest short room name accepted, in characters.
const MaxNameLength = 32

var (
	ErrNameEmpty   = errors.New("room name is empty")
	ErrNameTooLong = errors.New("name too long")
)

var globalID = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ID addresses one room. It is always 64 lowercase hex characters.
type ID string

// Resolve maps a room name to its ID. A 64 character lowercase hex string
// is a global id and is used as is; any other name of at most
// MaxNameLength characters derives its id from its SHA-256.
func Resolve(name string) (ID, error) {
	switch {
	case name == "":
		return "", ErrNameEmpty
	case globalID.MatchString(name):
		return ID(name), nil
	case utf8.RuneCountInString(name) <= MaxNameLength:
		sum := sha256.Sum256([]byte(name))
		return ID(hex.EncodeToString(sum[:])), nil
	default:
		return "", ErrNameTooLong
	}
}

// Short returns an abbreviated form for logs.
func (id ID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}
