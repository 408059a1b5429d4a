package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxUploadBytes   = 5 << 20 // 5 MB per image
	maxUploadFiles   = 10
	uploadURLPrefix  = "/uploads/"
	uploadFormField  = "image"
	uploadsFormField = "images"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func validateImageUpload(header *multipart.FileHeader) (string, error) {
	if header.Size > maxUploadBytes {
		return "", fmt.Errorf("file too large: %s", header.Filename)
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type: %s", contentType)
	}

	return ext, nil
}

func saveUpload(header *multipart.FileHeader, uploadDir, ext string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	target := filepath.Join(uploadDir, name)

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(target)
		return "", err
	}

	return uploadURLPrefix + name, nil
}

func encodeDataURI(header *multipart.FileHeader, contentType string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

/*
POST /api/upload (admin)
- one image part, mime/size validated
- default: saves to disk, returns the static URL
- ?encoding=base64: returns a data URI instead, nothing written to disk
*/
func UploadImage(uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload"
		defer handlePanic(c, route)

		header, err := c.FormFile(uploadFormField)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "image file is required")
			return
		}

		ext, err := validateImageUpload(header)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if c.Query("encoding") == "base64" {
			contentType := strings.ToLower(header.Header.Get("Content-Type"))
			uri, err := encodeDataURI(header, contentType)
			if err != nil {
				log.Println("[UPLOAD] [ERROR] encode failed:", err)
				respondError(c, http.StatusInternalServerError, route, "upload failed")
				return
			}
			respondData(c, http.StatusCreated, gin.H{"image": uri})
			return
		}

		url, err := saveUpload(header, uploadDir, ext)
		if err != nil {
			log.Println("[UPLOAD] [ERROR] save failed:", err)
			respondError(c, http.StatusInternalServerError, route, "upload failed")
			return
		}

		log.Printf("[%s] stored %s", route, url)
		respondData(c, http.StatusCreated, gin.H{"url": url})
	}
}

// POST /api/upload/multiple (admin) accepts up to maxUploadFiles image parts.
func UploadImages(uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload/multiple"
		defer handlePanic(c, route)

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "multipart form is required")
			return
		}

		files := form.File[uploadsFormField]
		if len(files) == 0 {
			respondError(c, http.StatusBadRequest, route, "at least one image is required")
			return
		}
		if len(files) > maxUploadFiles {
			respondError(c, http.StatusBadRequest, route, fmt.Sprintf("at most %d images per request", maxUploadFiles))
			return
		}

		// validate everything before writing anything
		exts := make([]string, len(files))
		for i, header := range files {
			ext, err := validateImageUpload(header)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			exts[i] = ext
		}

		urls := make([]string, 0, len(files))
		for i, header := range files {
			url, err := saveUpload(header, uploadDir, exts[i])
			if err != nil {
				log.Println("[UPLOAD] [ERROR] save failed:", err)
				for _, stored := range urls {
					_ = safeDeleteUpload(uploadDir, stored)
				}
				respondError(c, http.StatusInternalServerError, route, "upload failed")
				return
			}
			urls = append(urls, url)
		}

		log.Printf("[%s] stored %d files", route, len(urls))
		respondData(c, http.StatusCreated, gin.H{"urls": urls})
	}
}

// safeDeleteUpload removes a previously uploaded file given its public URL
// path. Paths outside the upload directory are refused.
func safeDeleteUpload(uploadDir, relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" || strings.HasPrefix(trimmed, "data:") {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	if !strings.HasPrefix(cleanRel, uploadURLPrefix) {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}
	name := strings.TrimPrefix(cleanRel, uploadURLPrefix)

	cleanBase := filepath.Clean(uploadDir)
	target := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(name)))
	if target == cleanBase || !strings.HasPrefix(target, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload dir: %s", relPath)
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return nil
}
