package forms

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/mixtape/internal/testing"
)

const token = "nonce.signature"

func newDecoder() *Decoder {
	return NewDecoder(tu.StaticVerifier(token))
}

func TestResult(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r := Valid(PlaylistTrackForm{TrackID: "abc"})
		if !r.Valid() {
			t.Fatal("expected valid result")
		}
		if r.Data().TrackID != "abc" {
			t.Errorf("unexpected data %+v", r.Data())
		}
		if r.Errors() != nil {
			t.Errorf("expected nil errors, got %v", r.Errors())
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		r := Invalid[PlaylistTrackForm](FieldErrors{"track_id": {MsgRequired}})
		if r.Valid() {
			t.Fatal("expected invalid result")
		}
		if r.Data().TrackID != "" {
			t.Error("invalid result should carry zero data")
		}
	})

	t.Run("InvalidWithoutErrors", func(t *testing.T) {
		r := Invalid[PlaylistTrackForm](nil)
		if r.Valid() {
			t.Fatal("an invalid result must never report valid")
		}
	})
}

func TestDecoderCSRF(t *testing.T) {
	tests := []struct {
		name    string
		cookie  string
		field   string
		header  string
		wantMsg string
	}{
		{name: "Missing", wantMsg: MsgCSRFMissing},
		{name: "Forged", cookie: "forged", field: "forged", wantMsg: MsgCSRFInvalid},
		{name: "CookieOnly", cookie: token, wantMsg: MsgCSRFMissing},
		{name: "SubmittedWithoutCookie", header: token, wantMsg: MsgCSRFMissing},
		{name: "MatchingField", cookie: token, field: token},
		{name: "MismatchedField", cookie: token, field: "other", wantMsg: MsgCSRFInvalid},
		{name: "MatchingHeader", cookie: token, header: token},
		{name: "MismatchedHeader", cookie: token, header: "other", wantMsg: MsgCSRFInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{"track_id": "t1"}
			if tt.field != "" {
				fields["csrf_token"] = tt.field
			}
			req := tu.NewFormRequest(http.MethodPost, "/", fields)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}

			result := newDecoder().PlaylistTrack(req)

			if tt.wantMsg == "" {
				if !result.Valid() {
					t.Fatalf("expected valid form, got %v", result.Errors())
				}
				return
			}
			if result.Valid() {
				t.Fatal("expected CSRF failure")
			}
			if got := result.Errors()[CSRFField]; len(got) != 1 || got[0] != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, got)
			}
		})
	}
}

func TestDecoderPlaylist(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := tu.NewMultipartRequest(t, http.MethodPost, "/", map[string]string{"name": "Road Trip", "private": "true"},
			tu.FormFile{Field: "image", Filename: "cover.PNG", Content: "png"})
		result := newDecoder().Playlist(tu.WithCSRF(req, token), true)

		if !result.Valid() {
			t.Fatalf("expected valid form, got %v", result.Errors())
		}
		form := result.Data()
		if form.Name != "Road Trip" || !form.Private {
			t.Errorf("unexpected form %+v", form)
		}
		if form.Image == nil || form.Image.Name != "cover.PNG" || string(form.Image.Data) != "png" {
			t.Errorf("unexpected image %+v", form.Image)
		}
	})

	t.Run("LegacyImageField", func(t *testing.T) {
		req := tu.NewMultipartRequest(t, http.MethodPost, "/", map[string]string{"name": "Mix"},
			tu.FormFile{Field: "imageUrl", Filename: "cover.jpg", Content: "jpg"})
		result := newDecoder().Playlist(tu.WithCSRF(req, token), true)

		if !result.Valid() {
			t.Fatalf("expected valid form, got %v", result.Errors())
		}
		if result.Data().Private {
			t.Error("absent checkbox should decode as false")
		}
	})

	t.Run("ImageOptional", func(t *testing.T) {
		req := tu.NewMultipartRequest(t, http.MethodPut, "/", map[string]string{"name": "Mix"})
		result := newDecoder().Playlist(tu.WithCSRF(req, token), false)

		if !result.Valid() {
			t.Fatalf("expected valid form, got %v", result.Errors())
		}
		if result.Data().Image != nil {
			t.Error("expected no image")
		}
	})

	tests := []struct {
		name   string
		fields map[string]string
		files  []tu.FormFile
		field  string
		msg    string
	}{
		{
			name:   "MissingName",
			fields: map[string]string{"name": "  "},
			files:  []tu.FormFile{{Field: "image", Filename: "a.png", Content: "x"}},
			field:  "name",
			msg:    MsgRequired,
		},
		{
			name:   "NameTooLong",
			fields: map[string]string{"name": strings.Repeat("n", 256)},
			files:  []tu.FormFile{{Field: "image", Filename: "a.png", Content: "x"}},
			field:  "name",
			msg:    "Field cannot be longer than 255 characters.",
		},
		{
			name:   "MissingImage",
			fields: map[string]string{"name": "Mix"},
			field:  "image",
			msg:    MsgRequired,
		},
		{
			name:   "BadExtension",
			fields: map[string]string{"name": "Mix"},
			files:  []tu.FormFile{{Field: "image", Filename: "a.exe", Content: "x"}},
			field:  "image",
			msg:    MsgImageExtension,
		},
		{
			name:   "BadBoolean",
			fields: map[string]string{"name": "Mix", "private": "maybe"},
			files:  []tu.FormFile{{Field: "image", Filename: "a.gif", Content: "x"}},
			field:  "private",
			msg:    MsgInvalidBoolean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tu.NewMultipartRequest(t, http.MethodPost, "/", tt.fields, tt.files...)
			result := newDecoder().Playlist(tu.WithCSRF(req, token), true)

			if result.Valid() {
				t.Fatal("expected invalid form")
			}
			got := result.Errors()[tt.field]
			if len(got) == 0 || got[0] != tt.msg {
				t.Errorf("expected %s error %q, got %v", tt.field, tt.msg, result.Errors())
			}
		})
	}
}

func TestDecoderImageSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "OverLimit", size: 64},
		{name: "BodyOverLimit", size: multipartOverhead + 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoder()
			d.maxFileSize = 32

			req := tu.NewMultipartRequest(t, http.MethodPost, "/", map[string]string{"name": "Mix"},
				tu.FormFile{Field: "image", Filename: "a.png", Content: strings.Repeat("x", tt.size)})
			result := d.Playlist(tu.WithCSRF(req, token), true)

			if result.Valid() {
				t.Fatal("expected invalid form")
			}
			if got := result.Errors()["image"]; len(got) != 1 || got[0] != MsgImageTooLarge {
				t.Errorf("expected %q, got %v", MsgImageTooLarge, result.Errors())
			}
		})
	}

	t.Run("AtLimit", func(t *testing.T) {
		d := newDecoder()
		d.maxFileSize = 32

		req := tu.NewMultipartRequest(t, http.MethodPost, "/", map[string]string{"name": "Mix"},
			tu.FormFile{Field: "image", Filename: "a.png", Content: strings.Repeat("x", 32)})
		if result := d.Playlist(tu.WithCSRF(req, token), true); !result.Valid() {
			t.Errorf("expected valid form, got %v", result.Errors())
		}
	})
}

func TestDecoderPlaylistTrack(t *testing.T) {
	req := tu.NewFormRequest(http.MethodPost, "/", map[string]string{})
	result := newDecoder().PlaylistTrack(tu.WithCSRF(req, token))

	if result.Valid() {
		t.Fatal("expected invalid form")
	}
	if got := result.Errors()["track_id"]; len(got) != 1 || got[0] != MsgRequired {
		t.Errorf("unexpected errors %v", result.Errors())
	}
}

func TestDecoderSignup(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		body := `{"name":"Demo","email":"demo@example.com","password":"password","is_artist":true}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		result := newDecoder().Signup(tu.WithCSRF(req, token))
		if !result.Valid() {
			t.Fatalf("expected valid form, got %v", result.Errors())
		}
		if form := result.Data(); !form.IsArtist || form.Email != "demo@example.com" {
			t.Errorf("unexpected form %+v", form)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		req := tu.NewFormRequest(http.MethodPost, "/", map[string]string{"email": "not-an-email"})
		result := newDecoder().Signup(tu.WithCSRF(req, token))

		if result.Valid() {
			t.Fatal("expected invalid form")
		}
		errs := result.Errors()
		if errs["email"][0] != MsgInvalidEmail {
			t.Errorf("expected email error, got %v", errs["email"])
		}
		if errs["name"][0] != MsgRequired || errs["password"][0] != MsgRequired {
			t.Errorf("expected required errors, got %v", errs)
		}
		if fields := errs.Fields(); len(fields) != 3 || fields[0] != "email" {
			t.Errorf("unexpected fields %v", fields)
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")

		result := newDecoder().Signup(tu.WithCSRF(req, token))
		if result.Valid() || result.Errors()["form"][0] != MsgInvalidBody {
			t.Errorf("expected body error, got %v", result.Errors())
		}
	})
}

func TestDecoderLogin(t *testing.T) {
	req := tu.NewFormRequest(http.MethodPost, "/", map[string]string{"email": "demo@example.com", "password": "pw"})
	result := newDecoder().Login(tu.WithCSRF(req, token))

	if !result.Valid() {
		t.Fatalf("expected valid form, got %v", result.Errors())
	}
}

func TestAllowedImageExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png":  true,
		"a.JPG":  true,
		"a.jpeg": true,
		"a.gif":  true,
		"a.pdf":  true,
		"a.webp": false,
		"png":    false,
		"":       false,
	} {
		if got := AllowedImageExtension(name); got != want {
			t.Errorf("AllowedImageExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCheck(t *testing.T) {
	d := newDecoder()

	if result := Check(d, SignupForm{Name: "Demo", Email: "demo@example.com", Password: "pw"}); !result.Valid() {
		t.Errorf("expected valid form, got %v", result.Errors())
	}

	result := Check(d, SignupForm{Name: "Demo", Email: "not-an-email"})
	if result.Valid() {
		t.Fatal("expected invalid form")
	}
	if fields := result.Errors().Fields(); len(fields) != 2 || fields[0] != "email" || fields[1] != "password" {
		t.Errorf("expected email and password errors, got %v", fields)
	}
}
