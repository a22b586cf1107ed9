package crypto

import (
	"crypto/rand"
	"io"
)

// randReader is the random source used when a caller passes a nil reader.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

// SetRandReaderForTesting sets the random reader used when no explicit reader
// is given. This is intended for testing only. Returns a function to restore
// the original reader.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}

func randSource(r io.Reader) io.Reader {
	if r != nil {
		return r
	}
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}
