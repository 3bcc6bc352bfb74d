// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/mixtape/internal/shared"
)

// MockStorage is an in-memory test double for [storage.Storage]
type MockStorage struct {
	mu        sync.Mutex
	BaseURL   string
	Blobs     map[string][]byte
	Removed   []string
	UploadErr error
	RemoveErr error
	// NoURL makes Upload succeed without producing a URL, as a misbehaving backend would.
	NoURL bool
}

func NewMockStorage() *MockStorage {
	return &MockStorage{BaseURL: "https://cdn.test/uploads", Blobs: map[string][]byte{}}
}

func (m *MockStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if m.NoURL {
		return "", nil
	}

	url := m.BaseURL + "/" + name
	m.Blobs[url] = data
	return url, nil
}

func (m *MockStorage) Remove(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Removed = append(m.Removed, url)
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.Blobs, url)
	return nil
}

// Has reports whether a blob is stored at url
func (m *MockStorage) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Blobs[url]
	return ok
}

// Count returns the number of stored blobs
func (m *MockStorage) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Blobs)
}

// StaticVerifier accepts exactly one CSRF token
type StaticVerifier string

func (v StaticVerifier) VerifyCSRF(token string) bool { return token != "" && token == string(v) }

// FormFile is a file part of a multipart body
type FormFile struct {
	Field    string
	Filename string
	Content  string
}

// NewMultipartRequest builds a multipart/form-data request with the given fields and files.
func NewMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...FormFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", f.Field, err)
		}
		if _, err := io.WriteString(part, f.Content); err != nil {
			t.Fatalf("failed to write file part %s: %v", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// NewFormRequest builds an application/x-www-form-urlencoded request.
func NewFormRequest(method, target string, fields map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}

	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithCSRF attaches the csrf_token cookie and echoes it in the X-CSRFToken header, as the frontend does.
func WithCSRF(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRFToken", token)
	return req
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
