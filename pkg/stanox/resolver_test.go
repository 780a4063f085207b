package stanox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolveBuiltinTable(t *testing.T) {
	resolver := NewResolver("", "")

	crs, err := resolver.Resolve(context.Background(), "87701")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "EUS" {
		t.Errorf("expected EUS for 87701, got %q", crs)
	}

	// Alias identifiers map to the same station as the canonical one.
	alias, err := resolver.Resolve(context.Background(), "36203")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alias != "KGX" {
		t.Errorf("expected the alias to resolve to KGX, got %q", alias)
	}
}

// With no lookup service configured an unknown identifier is a silent miss,
// not an error.
func TestResolveUnknownWithoutLookupService(t *testing.T) {
	resolver := NewResolver("", "")

	crs, err := resolver.Resolve(context.Background(), "00000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "" {
		t.Errorf("expected an empty code for an unknown identifier, got %q", crs)
	}
}

func TestResolveOverrideFile(t *testing.T) {
	overridePath := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(overridePath, []byte(`{"99999": "XXX", "87701": "ZZZ"}`), 0644); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver("", overridePath)

	// New mappings come in from the override file.
	crs, err := resolver.Resolve(context.Background(), "99999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "XXX" {
		t.Errorf("expected override mapping XXX, got %q", crs)
	}

	// Overrides win over the built-in table.
	crs, err = resolver.Resolve(context.Background(), "87701")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "ZZZ" {
		t.Errorf("expected override to shadow the built-in mapping, got %q", crs)
	}
}

func TestResolveRemoteLookup(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.URL.Path != "/stanox/55555" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"crs": "NEW"})
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, "")

	crs, err := resolver.Resolve(context.Background(), "55555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "NEW" {
		t.Errorf("expected NEW from the lookup service, got %q", crs)
	}

	// The learned mapping is served locally from now on.
	crs, err = resolver.Resolve(context.Background(), "55555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "NEW" {
		t.Errorf("expected the learned mapping, got %q", crs)
	}
	if requests.Load() != 1 {
		t.Errorf("expected exactly one remote request, got %d", requests.Load())
	}
}

// An identifier the lookup service does not know is remembered as a miss,
// so a feed replaying the same unregistered location does not hammer the
// service with one lookup per event.
func TestResolveRemoteNotFound(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, "")

	crs, err := resolver.Resolve(context.Background(), "55555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "" {
		t.Errorf("expected an empty code for a 404, got %q", crs)
	}
	if requests.Load() != 1 {
		t.Fatalf("expected exactly one remote request, got %d", requests.Load())
	}

	crs, err = resolver.Resolve(context.Background(), "55555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "" {
		t.Errorf("expected the remembered miss to stay empty, got %q", crs)
	}
	if requests.Load() != 1 {
		t.Errorf("expected the remembered miss to make no further requests, got %d", requests.Load())
	}

	// An expired miss entry is looked up again.
	resolver.tableMutex.Lock()
	resolver.misses["55555"] = time.Now().Add(-time.Second)
	resolver.tableMutex.Unlock()

	if _, err := resolver.Resolve(context.Background(), "55555"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests.Load() != 2 {
		t.Errorf("expected an expired miss to be retried, got %d requests", requests.Load())
	}
}

// Concurrent lookups for the same unknown identifier collapse into a single
// remote request.
func TestResolveSingleFlight(t *testing.T) {
	var requests atomic.Int64
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release

		json.NewEncoder(w).Encode(map[string]string{"crs": "NEW"})
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, "")

	const concurrency = 16

	var wg sync.WaitGroup
	results := make([]string, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			crs, err := resolver.Resolve(context.Background(), "55555")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = crs
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight request.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if requests.Load() != 1 {
		t.Errorf("expected concurrent lookups to collapse into 1 request, got %d", requests.Load())
	}
	for i, crs := range results {
		if crs != "NEW" {
			t.Errorf("caller %d: expected NEW, got %q", i, crs)
		}
	}
}

func TestPersisterFlushesLearnedMappings(t *testing.T) {
	overridePath := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(overridePath, []byte(`{"11111": "AAA"}`), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"crs": "NEW"})
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, overridePath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		resolver.RunPersister(ctx, 10*time.Millisecond)
		close(done)
	}()

	if _, err := resolver.Resolve(context.Background(), "55555"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wait for the debounce to fire and the file to be rewritten.
	deadline := time.Now().Add(2 * time.Second)
	for {
		overrideBytes, err := os.ReadFile(overridePath)
		if err == nil {
			var overrides map[string]string
			if json.Unmarshal(overrideBytes, &overrides) == nil && overrides["55555"] == "NEW" {
				// Pre-existing mappings survive the rewrite.
				if overrides["11111"] != "AAA" {
					t.Errorf("expected the existing mapping to survive, got %v", overrides)
				}
				break
			}
		}

		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the learned mapping to be persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}

func TestBuiltinTableWellFormed(t *testing.T) {
	table := builtinTable()

	if len(table) == 0 {
		t.Fatal("expected a non-empty built-in table")
	}

	for stanox, crs := range table {
		if len(stanox) != 5 {
			t.Errorf("identifier %q is not 5 digits", stanox)
		}
		if len(crs) != 3 {
			t.Errorf("station code %q for %s is not 3 characters", crs, stanox)
		}
	}
}

func TestLookupEndpointFormatting(t *testing.T) {
	// Guard against accidental double slashes when the endpoint carries a
	// trailing slash already.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"crs": "NEW"}`)
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, "")
	if _, err := resolver.Resolve(context.Background(), "55555"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
