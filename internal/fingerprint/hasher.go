package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
)

// chunkSize is the read granularity for streaming digests. Digests must come
// out identical whether the bytes arrive from disk or from an HTTP body.
const chunkSize = 256

// HashReader consumes r in fixed-size chunks and returns the lowercase hex
// SHA-1 digest of its full contents.
func HashReader(r io.Reader) (string, error) {
	h := sha1.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile digests the file at path via HashReader.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}
