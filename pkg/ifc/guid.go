package ifc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// guidAlphabet is the 64-character alphabet of compressed GlobalIds.
const guidAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// namespace scopes the name-based UUIDs of generated files.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/bimgen"))

// GlobalID returns the compressed GlobalId for the object at path within
// the named project. The same inputs always give the same id.
func GlobalID(project, path string) string {
	return Compress(uuid.NewSHA1(namespace, []byte(project+"\x00"+path)))
}

// Compress encodes a UUID as a 22-character GlobalId. The first byte
// takes two characters and each following group of three bytes four.
func Compress(u uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(22)
	encode(&sb, uint32(u[0]), 2)
	for i := 1; i < 16; i += 3 {
		n := uint32(u[i])<<16 | uint32(u[i+1])<<8 | uint32(u[i+2])
		encode(&sb, n, 4)
	}
	return sb.String()
}

func encode(sb *strings.Builder, n uint32, digits int) {
	var buf [4]byte
	for i := digits - 1; i >= 0; i-- {
		buf[i] = guidAlphabet[n%64]
		n /= 64
	}
	sb.Write(buf[:digits])
}

// Expand decodes a compressed GlobalId.
func Expand(s string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(s) != 22 {
		return u, fmt.Errorf("globalid %q: want 22 characters, got %d", s, len(s))
	}
	first, err := decode(s[:2])
	if err != nil {
		return u, fmt.Errorf("globalid %q: %w", s, err)
	}
	if first > 0xff {
		return u, fmt.Errorf("globalid %q: leading digits out of range", s)
	}
	u[0] = byte(first)
	for i, j := 1, 2; i < 16; i, j = i+3, j+4 {
		n, err := decode(s[j : j+4])
		if err != nil {
			return u, fmt.Errorf("globalid %q: %w", s, err)
		}
		u[i], u[i+1], u[i+2] = byte(n>>16), byte(n>>8), byte(n)
	}
	return u, nil
}

func decode(s string) (uint32, error) {
	var n uint32
	for _, c := range []byte(s) {
		d := strings.IndexByte(guidAlphabet, c)
		if d < 0 {
			return 0, fmt.Errorf("invalid character %q", c)
		}
		n = n*64 + uint32(d)
	}
	return n, nil
}
