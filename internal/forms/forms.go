package forms

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CSRF cookie and field names.
const (
	CSRFCookie = "csrf_token"
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRFToken"
)

// Validation messages.
const (
	MsgRequired       = "This field is required."
	MsgCSRFMissing    = "The CSRF token is missing."
	MsgCSRFInvalid    = "The CSRF token is invalid."
	MsgInvalidEmail   = "Invalid email address."
	MsgImageExtension = "File does not have an approved extension: pdf, png, jpg, jpeg, gif"
	MsgUploadFailed   = "File upload failed"
	MsgInvalidBody    = "Could not parse form submission."
	MsgInvalidBoolean = "Not a valid boolean value."
	MsgImageTooLarge  = "File is too large."
)

const (
	defaultMaxMemory   = 32 << 20
	defaultMaxFileSize = 10 << 20

	// multipartOverhead is the allowance for boundaries, headers and text fields on top of the image.
	multipartOverhead = 1 << 20
)

// AllowedImageExtensions lists the accepted image file extensions.
var AllowedImageExtensions = []string{"pdf", "png", "jpg", "jpeg", "gif"}

// TokenVerifier checks that a CSRF token was issued by this server.
type TokenVerifier interface {
	VerifyCSRF(token string) bool
}

// File is an uploaded file held in memory.
type File struct {
	Name string
	Data []byte
}

// Reader returns a reader over the file contents.
func (f *File) Reader() io.Reader { return bytes.NewReader(f.Data) }

// PlaylistForm is submitted to create or edit a playlist.
type PlaylistForm struct {
	Name    string `form:"name" validate:"required,max=255"`
	Private bool   `form:"private"`
	Image   *File  `form:"image" validate:"-"`
}

// PlaylistTrackForm is submitted to add a track to a playlist.
type PlaylistTrackForm struct {
	TrackID string `form:"track_id" validate:"required"`
}

// SignupForm creates an account.
type SignupForm struct {
	Name     string `form:"name" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,max=255"`
	ImageURL string `form:"image_url" validate:"omitempty,url"`
	IsArtist bool   `form:"is_artist"`
}

// LoginForm starts a session.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// Decoder parses requests into forms.
type Decoder struct {
	validate    *validator.Validate
	csrf        TokenVerifier
	maxFileSize int64
}

// NewDecoder creates a Decoder that checks CSRF tokens with csrf.
func NewDecoder(csrf TokenVerifier) *Decoder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Tag registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("imageext", func(fl validator.FieldLevel) bool {
		return AllowedImageExtension(fl.Field().String())
	})

	return &Decoder{validate: v, csrf: csrf, maxFileSize: defaultMaxFileSize}
}

// AllowedImageExtension reports whether name ends in an accepted image extension.
func AllowedImageExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Playlist decodes a [PlaylistForm]. The image is required when requireImage is set.
func (d *Decoder) Playlist(r *http.Request, requireImage bool) Result[PlaylistForm] {
	sub, errs := d.parse(r)
	if errs != nil {
		return Invalid[PlaylistForm](errs)
	}

	form := PlaylistForm{Name: strings.TrimSpace(sub.values.Get("name"))}
	errs = FieldErrors{}

	if private, ok := parseBool(sub.values.Get("private")); ok {
		form.Private = private
	} else {
		errs.Add("private", MsgInvalidBoolean)
	}

	d.check(form, errs)

	image, err := sub.file("image", "imageUrl")
	switch {
	case err != nil:
		errs.Add("image", err.Error())
	case image == nil && requireImage:
		errs.Add("image", MsgRequired)
	case image != nil:
		if d.validate.Var(image.Name, "imageext") != nil {
			errs.Add("image", MsgImageExtension)
		} else if int64(len(image.Data)) > d.maxFileSize {
			errs.Add("image", MsgImageTooLarge)
		}
		form.Image = image
	}

	if len(errs) > 0 {
		return Invalid[PlaylistForm](errs)
	}
	return Valid(form)
}

// PlaylistTrack decodes a [PlaylistTrackForm].
func (d *Decoder) PlaylistTrack(r *http.Request) Result[PlaylistTrackForm] {
	sub, errs := d.parse(r)
	if errs != nil {
		return Invalid[PlaylistTrackForm](errs)
	}

	form := PlaylistTrackForm{TrackID: strings.TrimSpace(sub.values.Get("track_id"))}
	errs = FieldErrors{}
	d.check(form, errs)

	if len(errs) > 0 {
		return Invalid[PlaylistTrackForm](errs)
	}
	return Valid(form)
}

// Signup decodes a [SignupForm].
func (d *Decoder) Signup(r *http.Request) Result[SignupForm] {
	sub, errs := d.parse(r)
	if errs != nil {
		return Invalid[SignupForm](errs)
	}

	form := SignupForm{
		Name:     strings.TrimSpace(sub.values.Get("name")),
		Email:    strings.TrimSpace(sub.values.Get("email")),
		Password: sub.values.Get("password"),
		ImageURL: strings.TrimSpace(sub.values.Get("image_url")),
	}
	errs = FieldErrors{}

	if isArtist, ok := parseBool(sub.values.Get("is_artist")); ok {
		form.IsArtist = isArtist
	} else {
		errs.Add("is_artist", MsgInvalidBoolean)
	}

	d.check(form, errs)

	if len(errs) > 0 {
		return Invalid[SignupForm](errs)
	}
	return Valid(form)
}

// Login decodes a [LoginForm].
func (d *Decoder) Login(r *http.Request) Result[LoginForm] {
	sub, errs := d.parse(r)
	if errs != nil {
		return Invalid[LoginForm](errs)
	}

	form := LoginForm{
		Email:    strings.TrimSpace(sub.values.Get("email")),
		Password: sub.values.Get("password"),
	}
	errs = FieldErrors{}
	d.check(form, errs)

	if len(errs) > 0 {
		return Invalid[LoginForm](errs)
	}
	return Valid(form)
}

// Check validates a form built outside of an HTTP request, such as from CLI flags.
func Check[T any](d *Decoder, form T) Result[T] {
	errs := FieldErrors{}
	d.check(form, errs)
	if len(errs) > 0 {
		return Invalid[T](errs)
	}
	return Valid(form)
}

// check runs struct tag validation and records a message per failing field.
func (d *Decoder) check(form any, errs FieldErrors) {
	err := d.validate.Struct(form)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", err.Error())
		return
	}

	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "email":
		return MsgInvalidEmail
	case "url":
		return "Invalid URL."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}

// submission is a parsed request body.
type submission struct {
	values url.Values
	r      *http.Request
	max    int64
}

// file reads the first present file field among names.
func (s submission) file(names ...string) (*File, error) {
	if s.r.MultipartForm == nil {
		return nil, nil
	}

	for _, name := range names {
		headers := s.r.MultipartForm.File[name]
		if len(headers) == 0 {
			continue
		}

		fh := headers[0]
		if fh.Filename == "" {
			return nil, nil
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("could not read uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, s.max+1))
		if err != nil {
			return nil, fmt.Errorf("could not read uploaded file")
		}
		return &File{Name: fh.Filename, Data: data}, nil
	}
	return nil, nil
}

// parse reads the body and checks the CSRF token. The returned errors are non-nil only on failure.
func (d *Decoder) parse(r *http.Request) (submission, FieldErrors) {
	sub := submission{r: r, max: d.maxFileSize}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, d.maxFileSize+multipartOverhead)
		if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return sub, FieldErrors{"image": {MsgImageTooLarge}}
			}
			return sub, FieldErrors{"form": {MsgInvalidBody}}
		}
		sub.values = r.PostForm
	case "application/json":
		values, err := jsonValues(r.Body)
		if err != nil {
			return sub, FieldErrors{"form": {MsgInvalidBody}}
		}
		sub.values = values
	default:
		if err := r.ParseForm(); err != nil {
			return sub, FieldErrors{"form": {MsgInvalidBody}}
		}
		sub.values = r.PostForm
	}

	if msg := d.checkCSRF(r, sub.values); msg != "" {
		return sub, FieldErrors{CSRFField: {msg}}
	}
	return sub, nil
}

// checkCSRF validates the cookie token and requires the same token to be echoed in the csrf_token field
// or the X-CSRFToken header.
func (d *Decoder) checkCSRF(r *http.Request, values url.Values) string {
	cookie, err := r.Cookie(CSRFCookie)
	if err != nil || cookie.Value == "" {
		return MsgCSRFMissing
	}
	if d.csrf == nil || !d.csrf.VerifyCSRF(cookie.Value) {
		return MsgCSRFInvalid
	}

	submitted := values.Get(CSRFField)
	if submitted == "" {
		submitted = r.Header.Get(CSRFHeader)
	}
	if submitted == "" {
		return MsgCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie.Value)) != 1 {
		return MsgCSRFInvalid
	}
	return ""
}

// jsonValues flattens a JSON object of scalars into form values.
func jsonValues(body io.Reader) (url.Values, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}

	values := url.Values{}
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(k, v)
		case bool:
			values.Set(k, strconv.FormatBool(v))
		case float64:
			values.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("field %s must be a scalar", k)
		}
	}
	return values, nil
}

// parseBool accepts checkbox style values. Empty means false.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "off", "no", "n":
		return false, true
	case "true", "1", "on", "yes", "y":
		return true, true
	default:
		return false, false
	}
}
