package session

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

var idPattern = regexp.MustCompile(`^[a-z0-9-]+-[0-9a-z]{26}$`)

func TestGenerateSessionIDSanitizesBase(t *testing.T) {
	tests := []struct {
		base   string
		prefix string
	}{
		{base: "chat", prefix: "chat-"},
		{base: "Trip Planner", prefix: "trip-planner-"},
		{base: "  ", prefix: "chat-"},
		{base: "***", prefix: "chat-"},
		{base: "paris/2024", prefix: "paris-2024-"},
	}
	for _, tt := range tests {
		id := GenerateSessionID(tt.base)
		if !strings.HasPrefix(id, tt.prefix) {
			t.Fatalf("GenerateSessionID(%q) = %s, want prefix %s", tt.base, id, tt.prefix)
		}
		if !idPattern.MatchString(id) {
			t.Fatalf("GenerateSessionID(%q) = %s has unexpected shape", tt.base, id)
		}
	}
}

func TestGenerateSessionIDUniqueWithinSameMillisecond(t *testing.T) {
	const n = 500
	seen := make(map[string]struct{}, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := GenerateSessionID("chat")
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("expected %d unique ids, got %d", n, len(seen))
	}
}

func TestCreatedAtRoundTrip(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := GenerateSessionID("chat")
	created, ok := CreatedAt(id)
	if !ok {
		t.Fatalf("CreatedAt(%s) failed", id)
	}
	if created.Before(before) || created.After(time.Now().Add(time.Second)) {
		t.Fatalf("CreatedAt(%s) = %v out of range", id, created)
	}

	if _, ok := CreatedAt("no-ulid-here"); ok {
		t.Fatal("expected CreatedAt to reject malformed id")
	}
}

func TestNewGenerator(t *testing.T) {
	gen := NewGenerator("trip")
	a, b := gen(), gen()
	if a == b {
		t.Fatalf("generator repeated id %s", a)
	}
	if !strings.HasPrefix(a, "trip-") {
		t.Fatalf("unexpected prefix: %s", a)
	}
}
