package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	UploadURLPrefix = "uploads"
	thumbSize       = 256
	thumbSuffix     = ".thumb.webp"
)

var (
	ErrUploadTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrUploadNotAnImage = errors.New("profile photo must be a JPEG, PNG or WebP image")

	allowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
	reExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

// StoredFile describes a photo written to the upload directory.
type StoredFile struct {
	OriginalName string
	StoredName   string
	RelPath      string // uploads/<name>, what the DB keeps
	ThumbRelPath string
	AbsPath      string
	ThumbAbsPath string
	Size         int64
	MimeType     string
}

// PhotoStore writes uploaded profile photos under Dir.
type PhotoStore struct {
	Dir      string
	MaxBytes int64
}

func NewPhotoStore(dir string, maxBytes int64) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &PhotoStore{Dir: dir, MaxBytes: maxBytes}, nil
}

// GenerateUploadName builds <unix-ms>-<random><ext>, keeping the original extension.
func GenerateUploadName(original, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !reExt.MatchString(ext) {
		ext = allowedImageTypes[mimeType]
	}
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}

// Save validates and stores fh. The image is fully decoded so a renamed non-image is rejected.
func (s *PhotoStore) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, ErrUploadTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	limit := s.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrUploadTooLarge
	}

	mimeType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mimeType]; !ok {
		return nil, ErrUploadNotAnImage
	}
	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, ErrUploadNotAnImage
	}

	name := GenerateUploadName(fh.Filename, mimeType)
	abs := filepath.Join(s.Dir, name)
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	out := &StoredFile{
		OriginalName: filepath.Base(fh.Filename),
		StoredName:   name,
		RelPath:      UploadURLPrefix + "/" + name,
		AbsPath:      abs,
		Size:         int64(len(data)),
		MimeType:     mimeType,
	}

	// thumbnail is best effort; the original is what the record points at
	thumbAbs := abs + thumbSuffix
	if err := writeThumbnail(img, thumbAbs); err != nil {
		log.Printf("[WARN] thumbnail for %s failed: %v", name, err)
	} else {
		out.ThumbAbsPath = thumbAbs
		out.ThumbRelPath = out.RelPath + thumbSuffix
	}
	return out, nil
}

// Remove deletes a stored photo and its thumbnail; used when the owning transaction fails.
func (s *PhotoStore) Remove(f *StoredFile) {
	if f == nil {
		return
	}
	for _, p := range []string{f.AbsPath, f.ThumbAbsPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] remove %s: %v", p, err)
		}
	}
}

func decodeImage(data []byte, mimeType string) (image.Image, error) {
	if mimeType == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

func writeThumbnail(img image.Image, path string) error {
	thumb := imaging.Fit(img, thumbSize, thumbSize, imaging.Lanczos)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return webp.Encode(f, thumb, &webp.Options{Quality: 80})
}

// ThumbnailPath maps a stored photo path to its thumbnail path.
func ThumbnailPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	return relPath + thumbSuffix
}
