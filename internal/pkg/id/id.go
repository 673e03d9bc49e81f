package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID. Time-prefixed and lexicographically sortable,
// which keeps DynamoDB keys and GSI range ordering well-behaved.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
