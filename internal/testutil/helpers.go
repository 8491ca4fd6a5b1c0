package testutil

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// GenerateRandomData returns size pseudo-random bytes for upload payloads.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.UintN(256))
	}
	return data
}

// GenerateTestKey returns a unique object key under prefix, so parallel
// runs against one bucket never share an upload.
func GenerateTestKey(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return fmt.Sprintf("%sobject-%d-%05d", prefix, time.Now().UnixNano(), rand.IntN(100000))
}

// GenerateTestBucketName returns a DNS-compliant bucket name of at most 63
// characters.
func GenerateTestBucketName(prefix string) string {
	name := strings.ToLower(strings.ReplaceAll(prefix, "_", "-"))
	name = fmt.Sprintf("%s-%d-%04d", name, time.Now().Unix(), rand.IntN(10000))
	return name[:min(len(name), 63)]
}
