package hutch

import (
	"math/rand"
	"time"
)

const letterBytes = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomString generates a random alphanumeric string of the given size.
func RandomString(size int) string {

	src := rand.NewSource(time.Now().UnixNano())
	b := make([]byte, size)
	for i := range b {
		b[i] = letterBytes[src.Int63()%int64(len(letterBytes))]
	}

	return string(b)
}

// RandomBytes returns a RandomString converted to bytes.
func RandomBytes(size int) []byte {
	return []byte(RandomString(size))
}
