package jd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFetchFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := "This is a test job posting."

	err := os.WriteFile(testFile, []byte(testContent+"\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	text, err := fetchFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to fetch from file: %v", err)
	}

	if text != testContent {
		t.Errorf("Expected content '%s', got '%s'", testContent, text)
	}
}

func TestFetchFromFileNonexistent(t *testing.T) {
	_, err := fetchFromFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error fetching nonexistent file, got nil")
	}
}

func TestFetchFromFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.txt")

	err := os.WriteFile(emptyFile, []byte("  \n"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err = fetchFromFile(emptyFile)
	if err == nil {
		t.Error("Expected error fetching empty file, got nil")
	}
}

func TestFetchFromURL(t *testing.T) {
	testContent := "<html><head><title>Jobs</title><script>track()</script></head><body><nav>Home</nav><h1>Job Title</h1><p>Job description here.</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testContent))
	}))
	defer server.Close()

	text, err := fetchFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if !strings.Contains(text, "Job Title") || !strings.Contains(text, "Job description here.") {
		t.Errorf("Expected body text, got %q", text)
	}

	for _, unwanted := range []string{"<", "track()", "Home"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected %q to be stripped, got %q", unwanted, text)
		}
	}
}

func TestFetchFromURLPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  a <b>literal</b> posting  "))
	}))
	defer server.Close()

	text, err := fetchFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if text != "a <b>literal</b> posting" {
		t.Errorf("Expected plain text untouched, got %q", text)
	}
}

func TestFetchFromURL404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fetchFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for 404 response, got nil")
	}
}

func TestFetchFromURLEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>only()</script></body></html>"))
	}))
	defer server.Close()

	_, err := fetchFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for page without text, got nil")
	}
}

func TestFetchFromURLTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		_, _ = w.Write([]byte("too slow"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := fetchFromURL(ctx, server.URL)
	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestFetchWithContext(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := "Test job posting"

	err := os.WriteFile(testFile, []byte(testContent), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	posting, err := FetchWithContext(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if posting.Text != testContent {
		t.Errorf("Expected '%s', got '%s'", testContent, posting.Text)
	}

	if posting.Source != testFile || posting.URL != "" {
		t.Errorf("Unexpected source metadata: %+v", posting)
	}
}

func TestFetchWithContextURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Test content</body></html>"))
	}))
	defer server.Close()

	posting, err := FetchWithContext(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if posting.Text != "Test content" {
		t.Errorf("Expected 'Test content', got %q", posting.Text)
	}

	if posting.URL != server.URL {
		t.Errorf("Expected URL %s, got %s", server.URL, posting.URL)
	}
}

func TestFetch(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	err := os.WriteFile(testFile, []byte("Test"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	posting, err := Fetch(testFile)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if posting.Text != "Test" {
		t.Errorf("Expected 'Test', got '%s'", posting.Text)
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple tags",
			input:    "<p>Hello <strong>world</strong></p>",
			expected: "Hello world",
		},
		{
			name:     "script tags",
			input:    "<p>Text</p><script>alert('hi')</script><p>More</p>",
			expected: "Text\n\nMore",
		},
		{
			name:     "style tags",
			input:    "<style>.class{color:red}</style><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "lists",
			input:    "<ul><li>Go</li><li>SQL</li></ul>",
			expected: "- Go\n- SQL",
		},
		{
			name:     "entities",
			input:    "<p>R&amp;D &gt; sales</p>",
			expected: "R&D > sales",
		},
		{
			name:     "no HTML",
			input:    "Plain text",
			expected: "Plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := htmlToText(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
