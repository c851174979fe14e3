package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>第一章</h1></body></html>`))
	}))
	defer server.Close()

	f := New(Options{})
	doc, err := f.Fetch(context.Background(), server.URL+"/book")
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if got := doc.Find("h1").Text(); got != "第一章" {
		t.Errorf("Expected heading text, got %q", got)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", gotUA)
	}
	if doc.Url == nil || doc.Url.Path != "/book" {
		t.Errorf("Expected document url to be set, got %v", doc.Url)
	}
}

func TestHTTPFetcher_LegacyCharset(t *testing.T) {
	body, err := simplifiedchinese.GBK.NewEncoder().String(`<html><head><meta charset="gbk"></head><body><p>他走进了房间。</p></body></html>`)
	if err != nil {
		t.Fatalf("Failed to encode page: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	defer server.Close()

	doc, err := New(Options{}).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}
	if got := doc.Find("p").Text(); got != "他走进了房间。" {
		t.Errorf("Expected decoded text, got %q", got)
	}
}

func TestHTTPFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		}
	}))
	defer server.Close()

	t.Run("Non-2xx status", func(t *testing.T) {
		_, err := New(Options{}).Fetch(context.Background(), server.URL+"/missing")
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("Expected status error, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		_, err := New(Options{Timeout: 50 * time.Millisecond}).FetchBytes(context.Background(), server.URL+"/slow")
		if err == nil {
			t.Error("Expected timeout error")
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := New(Options{}).FetchBytes(ctx, server.URL+"/slow"); err == nil {
			t.Error("Expected context error")
		}
	})

	t.Run("Unsupported scheme", func(t *testing.T) {
		if _, err := New(Options{}).FetchBytes(context.Background(), "file:///etc/passwd"); err == nil {
			t.Error("Expected scheme error")
		}
	})
}

func TestHTTPFetcher_CustomUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	body, err := New(Options{UserAgent: "reader-test"}).FetchBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}
	if string(body) != "reader-test" {
		t.Errorf("Expected custom user agent, got %q", body)
	}
}
