package service

import (
	"crypto/rand"
	"math/big"

	"github.com/labstack/gommon/random"
)

const hexBytes = random.Hex

// correlation tags are 32 hex chars (128 bits), enough that collisions are
// only a theoretical concern and the tag cannot be guessed from invoice
// metadata
const correlationTagLength = 32

func randBytesFromStr(length int, from string) ([]byte, error) {
	b := make([]byte, length)
	fromLenBigInt := big.NewInt(int64(len(from)))
	for i := range b {
		r, err := rand.Int(rand.Reader, fromLenBigInt)
		if err != nil {
			return nil, err
		}
		b[i] = from[r.Int64()]
	}
	return b, nil
}

// GenerateCorrelationTag returns a fresh random tag for an invoice memo. An
// error here means the system randomness source is broken, which callers
// should treat as fatal.
func GenerateCorrelationTag() (string, error) {
	tag, err := randBytesFromStr(correlationTagLength, hexBytes)
	if err != nil {
		return "", err
	}
	return string(tag), nil
}
