package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func multipartImageRequest(t *testing.T, field, filename, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatalf("part write failed: %v", err)
	}
	_ = writer.Close()

	return buf, writer.FormDataContentType()
}

func TestUploadImageRejectsUnsupportedType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buf, contentType := multipartImageRequest(t, uploadFormField, "notes.txt", "text/plain", []byte("hello"))

	req := httptest.NewRequest("POST", "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	UploadImage(t.TempDir())(c)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadImageRejectsMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest("POST", "/api/upload", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	UploadImage(t.TempDir())(c)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadImageStoresFileAndReturnsURL(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	buf, contentType := multipartImageRequest(t, uploadFormField, "pic.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	req := httptest.NewRequest("POST", "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	UploadImage(dir)(c)

	if rec.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if !body.Success || !strings.HasPrefix(body.Data.URL, uploadURLPrefix) {
		t.Fatalf("unexpected response: %+v", body)
	}
	if !strings.HasSuffix(body.Data.URL, ".png") {
		t.Fatalf("expected .png extension, got %s", body.Data.URL)
	}

	stored := filepath.Join(dir, strings.TrimPrefix(body.Data.URL, uploadURLPrefix))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("expected stored file at %s: %v", stored, err)
	}
}

func TestUploadImageBase64Variant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	buf, contentType := multipartImageRequest(t, uploadFormField, "pic.png", "image/png", []byte{1, 2, 3})

	req := httptest.NewRequest("POST", "/api/upload?encoding=base64", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	UploadImage(dir)(c)

	if rec.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Fatalf("expected data URI in response, got %s", rec.Body.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected nothing on disk for base64 variant, found %d entries", len(entries))
	}
}

func TestSafeDeleteUploadRefusesEscapes(t *testing.T) {
	dir := t.TempDir()

	for _, p := range []string{
		"/etc/passwd",
		"/uploads/../../../etc/passwd",
		"../secret.png",
	} {
		if err := safeDeleteUpload(dir, p); err == nil {
			t.Fatalf("expected refusal for %q", p)
		}
	}
}

func TestSafeDeleteUploadIgnoresEmptyAndDataURIs(t *testing.T) {
	dir := t.TempDir()

	if err := safeDeleteUpload(dir, ""); err != nil {
		t.Fatalf("expected nil for empty path, got %v", err)
	}
	if err := safeDeleteUpload(dir, "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("expected nil for data URI, got %v", err)
	}
}

func TestSafeDeleteUploadRemovesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x.png")
	if err := os.WriteFile(target, []byte{1}, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := safeDeleteUpload(dir, "/uploads/x.png"); err != nil {
		t.Fatalf("safeDeleteUpload failed: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("expected file to be removed")
	}

	// deleting again is not an error
	if err := safeDeleteUpload(dir, "/uploads/x.png"); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
}
