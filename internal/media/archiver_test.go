package media

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchivePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pic.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpegbytes"))
		case "/clip.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			w.Write([]byte("mp4bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := NewArchiver(dir, 10, 2, testLogger())

	rec := types.NewPostRecord(types.PlatformTwitter, "https://x.com/home")
	rec.ID = "twitter:42"
	rec.Media.Images = []string{srv.URL + "/pic.jpg"}
	rec.Media.Videos = []string{srv.URL + "/clip.mp4", srv.URL + "/missing.mp4"}

	results := a.ArchivePost(context.Background(), rec)
	if len(results) != 2 {
		t.Fatalf("archived %d files, want 2 (404 skipped)", len(results))
	}

	postDir := filepath.Join(dir, "twitter", "twitter_42")
	entries, err := os.ReadDir(postDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("post dir has %d files, want 2", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "image-") && !strings.HasPrefix(e.Name(), "video-") {
			t.Fatalf("unexpected file name %q", e.Name())
		}
	}

	for _, res := range results {
		if res.Size == 0 || res.Hash == "" {
			t.Fatalf("incomplete result: %+v", res)
		}
	}

	// Same URLs again: nothing new is fetched.
	if again := a.ArchivePost(context.Background(), rec); len(again) != 0 {
		t.Fatalf("re-archive fetched %d files, want 0", len(again))
	}
	if got := a.Stats()["files_archived"]; got != 2 {
		t.Fatalf("files_archived = %d, want 2", got)
	}
}

func TestArchivePostNoMedia(t *testing.T) {
	a := NewArchiver(t.TempDir(), 10, 2, testLogger())
	rec := types.NewPostRecord(types.PlatformFacebook, "https://facebook.com")
	rec.ID = "facebook:h1"
	if res := a.ArchivePost(context.Background(), rec); res != nil {
		t.Fatalf("expected nil results for a post without media, got %v", res)
	}
}

func TestAttachmentFilename(t *testing.T) {
	cases := []struct {
		url         string
		contentType string
		want        string // empty means "hash-derived, just check non-empty"
	}{
		{"https://cdn.example.com/media/photo.jpg?v=2", "image/jpeg", "photo.jpg"},
		{"https://cdn.example.com/", "image/png", ""},
	}
	for _, tc := range cases {
		got := attachmentFilename(tc.url, tc.contentType)
		if tc.want != "" && got != tc.want {
			t.Errorf("attachmentFilename(%q) = %q, want %q", tc.url, got, tc.want)
		}
		if got == "" || got == "unknown" {
			t.Errorf("attachmentFilename(%q) = %q", tc.url, got)
		}
	}
}
