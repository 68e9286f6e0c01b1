package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	res, err := NewResource(thisFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected local resource")
	}
	if res.Identity() != filepath.Clean(thisFile) {
		t.Fatalf("expected identity %q; got %q", filepath.Clean(thisFile), res.Identity())
	}
}

func TestResourceIdentityIsStable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tex.png"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	res1, err := NewResource(filepath.Join(dir, "tex.png"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()

	// Same file reached through a relative reference
	res2, err := NewResource("./sub/../tex.png", res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if res1.Identity() != res2.Identity() {
		t.Fatalf("expected identical identities; got %q and %q", res1.Identity(), res2.Identity())
	}
}

func TestRemoteResourceIdentity(t *testing.T) {
	type spec struct {
		url string
		exp string
	}
	specs := []spec{
		{"https://example.com/tex.png", "https://example.com/tex.png"},
		{"https://example.com/tex.png#layer", "https://example.com/tex.png"},
		{"https://example.com/tex.png?v=2", "https://example.com/tex.png?v=2"},
		{"https://example.com/tex.png?v=2#layer", "https://example.com/tex.png?v=2"},
	}

	for index, s := range specs {
		res := NewResourceFromStream(s.url, strings.NewReader(""))
		if !res.IsRemote() {
			t.Fatalf("[spec %d] expected %q to be remote", index, s.url)
		}
		if got := res.Identity(); got != s.exp {
			t.Fatalf("[spec %d] expected identity %q; got %q", index, s.exp, got)
		}
	}
}

func TestHttpResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	thisDir := filepath.Dir(thisFile)

	server := httptest.NewServer(http.FileServer(http.Dir(thisDir)))
	defer server.Close()

	fetchURL := server.URL + "/" + filepath.Base(thisFile)
	res, err := NewResource(fetchURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.Name() != filepath.Base(thisFile) {
		t.Fatalf("expected name %q; got %q", filepath.Base(thisFile), res.Name())
	}

	fetchURL = server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchURL, 404)
	_, err = NewResource(fetchURL, nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		if r.URL.Path == "/foo/file1.go" || r.URL.Path == "/foo/file2.go" {
			w.Write([]byte("OK"))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/file1.go", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()
	res2, err := NewResource("file2.go", res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if serverHits != 2 {
		t.Fatalf("expected server to receive 2 requests; got %d", serverHits)
	}
}

func TestCancelledRemoteFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResourceContext(ctx, server.URL+"/file.go", nil)
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Fatalf("expected a context cancellation error; got %v", err)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "resource: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.go", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded", strings.NewReader("payload"))
	defer res.Close()

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected payload; got %q", string(data))
	}
}
