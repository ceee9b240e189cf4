package session

import (
	cryptorand "crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultPrefix names chat sessions when no prefix is configured.
const DefaultPrefix = "chat"

var sessionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

var (
	entropyMu   sync.Mutex
	ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)
)

// Generator produces session identifiers. Controllers take one so tests can pin ids.
type Generator func() string

// NewGenerator returns a Generator that prefixes every id with base.
func NewGenerator(base string) Generator {
	return func() string {
		return GenerateSessionID(base)
	}
}

// GenerateSessionID returns "<base>-<ulid>". The ULID timestamp keeps ids sortable
// by creation time and the monotonic entropy keeps two ids minted in the same
// millisecond distinct.
func GenerateSessionID(base string) string {
	base = strings.TrimSpace(base)
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = sessionNameSanitizer.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = DefaultPrefix
	}

	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)
	entropyMu.Unlock()
	return fmt.Sprintf("%s-%s", base, strings.ToLower(id.String()))
}

// CreatedAt recovers the creation time embedded in an id from GenerateSessionID.
func CreatedAt(id string) (time.Time, bool) {
	idx := strings.LastIndex(id, "-")
	if idx < 0 || idx == len(id)-1 {
		return time.Time{}, false
	}
	parsed, err := ulid.ParseStrict(strings.ToUpper(id[idx+1:]))
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
