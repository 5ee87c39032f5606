package cache

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

var hashKey = []byte("autofree-cache-key-0123456789abc")

// keyVersion changes whenever analysis results for the same input change,
// so entries persisted by older builds are never hit.
const keyVersion = "2"

// Key derives the cache key of an analysis from its allocation indicator
// and the source content.
func Key(indicator string, content []byte) (string, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err := hash.Write([]byte(keyVersion + "\x00" + indicator)); err != nil {
		return "", err
	}
	if _, err := hash.Write([]byte{0}); err != nil {
		return "", err
	}
	if _, err := hash.Write(content); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
