package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/desertthunder/mixtape/internal/shared"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("UploadAndRemove", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewLocalStorage(dir, "http://localhost:8000/uploads/")
		if err != nil {
			t.Fatalf("failed to create storage: %v", err)
		}

		url, err := s.Upload(ctx, "cover.png", strings.NewReader("png-bytes"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if url != "http://localhost:8000/uploads/cover.png" {
			t.Errorf("unexpected url %s", url)
		}

		data, err := os.ReadFile(filepath.Join(dir, "cover.png"))
		if err != nil {
			t.Fatalf("expected file on disk: %v", err)
		}
		if string(data) != "png-bytes" {
			t.Errorf("unexpected contents %q", data)
		}

		if err := s.Remove(ctx, url); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "cover.png")); !os.IsNotExist(err) {
			t.Error("expected file to be removed")
		}

		if err := s.Remove(ctx, url); err != nil {
			t.Errorf("removing a missing file should succeed, got %v", err)
		}
	})

	t.Run("UploadStripsDirectories", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewLocalStorage(dir, "/uploads")
		if err != nil {
			t.Fatalf("failed to create storage: %v", err)
		}

		url, err := s.Upload(ctx, "../../escape.png", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if url != "/uploads/escape.png" {
			t.Errorf("unexpected url %s", url)
		}
		if _, err := os.Stat(filepath.Join(dir, "escape.png")); err != nil {
			t.Errorf("expected file inside upload dir: %v", err)
		}
	})

	t.Run("RemoveForeignURL", func(t *testing.T) {
		s, err := NewLocalStorage(t.TempDir(), "/uploads")
		if err != nil {
			t.Fatalf("failed to create storage: %v", err)
		}

		err = s.Remove(ctx, "https://elsewhere.example.com/a.png")
		if !errors.Is(err, shared.ErrRemoveFailed) {
			t.Errorf("expected ErrRemoveFailed, got %v", err)
		}
	})

	t.Run("MissingDir", func(t *testing.T) {
		if _, err := NewLocalStorage("", "/uploads"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

type fakeUploadAPI struct {
	uploadResult  *uploader.UploadResult
	uploadErr     error
	destroyResult *uploader.DestroyResult
	destroyErr    error

	uploaded  uploader.UploadParams
	destroyed uploader.DestroyParams
}

func (f *fakeUploadAPI) Upload(_ context.Context, _ any, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploaded = params
	return f.uploadResult, f.uploadErr
}

func (f *fakeUploadAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = params
	return f.destroyResult, f.destroyErr
}

func TestCloudinaryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Upload", func(t *testing.T) {
		tests := []struct {
			name    string
			result  *uploader.UploadResult
			err     error
			wantURL string
			wantErr bool
		}{
			{
				name:    "SecureURL",
				result:  &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/mixtape/abc.png", URL: "http://x"},
				wantURL: "https://res.cloudinary.com/demo/image/upload/v1/mixtape/abc.png",
			},
			{
				name:    "FallbackURL",
				result:  &uploader.UploadResult{URL: "http://res.cloudinary.com/demo/image/upload/mixtape/abc.png"},
				wantURL: "http://res.cloudinary.com/demo/image/upload/mixtape/abc.png",
			},
			{name: "NoURL", result: &uploader.UploadResult{}, wantErr: true},
			{name: "APIError", result: &uploader.UploadResult{Error: api.ErrorResp{Message: "bad"}}, wantErr: true},
			{name: "TransportError", err: errors.New("timeout"), wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				fake := &fakeUploadAPI{uploadResult: tt.result, uploadErr: tt.err}
				s := &CloudinaryStorage{api: fake, folder: "mixtape"}

				url, err := s.Upload(ctx, "abc.png", strings.NewReader("x"))
				if tt.wantErr {
					if !errors.Is(err, shared.ErrUploadFailed) {
						t.Fatalf("expected ErrUploadFailed, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("upload failed: %v", err)
				}
				if url != tt.wantURL {
					t.Errorf("expected %s, got %s", tt.wantURL, url)
				}
				if fake.uploaded.Folder != "mixtape" || fake.uploaded.PublicID != "abc" {
					t.Errorf("unexpected upload params: %+v", fake.uploaded)
				}
			})
		}
	})

	t.Run("Remove", func(t *testing.T) {
		fake := &fakeUploadAPI{destroyResult: &uploader.DestroyResult{Result: "ok"}}
		s := &CloudinaryStorage{api: fake, folder: "mixtape"}

		if err := s.Remove(ctx, "https://res.cloudinary.com/demo/image/upload/v1712/mixtape/abc.png"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if fake.destroyed.PublicID != "mixtape/abc" {
			t.Errorf("expected public id mixtape/abc, got %s", fake.destroyed.PublicID)
		}
	})

	t.Run("RemoveFailure", func(t *testing.T) {
		fake := &fakeUploadAPI{destroyResult: &uploader.DestroyResult{Result: "error"}}
		s := &CloudinaryStorage{api: fake}

		err := s.Remove(ctx, "https://res.cloudinary.com/demo/image/upload/mixtape/abc.png")
		if !errors.Is(err, shared.ErrRemoveFailed) {
			t.Errorf("expected ErrRemoveFailed, got %v", err)
		}
	})
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://res.cloudinary.com/demo/image/upload/v1712/mixtape/abc.png", want: "mixtape/abc"},
		{url: "https://res.cloudinary.com/demo/image/upload/mixtape/abc.jpeg", want: "mixtape/abc"},
		{url: "https://res.cloudinary.com/demo/image/upload/vintage/abc.gif", want: "vintage/abc"},
		{url: "https://res.cloudinary.com/demo/image/upload/abc", want: "abc"},
		{url: "https://example.com/abc.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := publicIDFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("Local", func(t *testing.T) {
		s, err := New(shared.StorageConfig{Backend: BackendLocal, LocalDir: t.TempDir(), BaseURL: "/uploads"})
		if err != nil {
			t.Fatalf("failed to build storage: %v", err)
		}
		if _, ok := s.(*LocalStorage); !ok {
			t.Errorf("expected *LocalStorage, got %T", s)
		}
	})

	t.Run("CloudinaryMissingURL", func(t *testing.T) {
		if _, err := New(shared.StorageConfig{Backend: BackendCloudinary}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := New(shared.StorageConfig{Backend: "s3"}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
