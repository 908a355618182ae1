package helper

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeaderFor(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("profilePhoto", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["profilePhoto"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateUploadName(t *testing.T) {
	re := regexp.MustCompile(`^\d{13}-\d{1,9}\.png$`)
	assert.Regexp(t, re, GenerateUploadName("My Photo.PNG", "image/png"))
	assert.True(t, strings.HasSuffix(GenerateUploadName("noext", "image/jpeg"), ".jpg"))
}

func TestPhotoStore_Save(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	fh := fileHeaderFor(t, "avatar.png", pngBytes(t, 400, 300))
	f, err := store.Save(fh)
	require.NoError(t, err)

	assert.Equal(t, "avatar.png", f.OriginalName)
	assert.Equal(t, "image/png", f.MimeType)
	assert.True(t, strings.HasPrefix(f.RelPath, "uploads/"))
	assert.FileExists(t, f.AbsPath)
	assert.FileExists(t, f.ThumbAbsPath)

	st, err := os.Stat(f.AbsPath)
	require.NoError(t, err)
	assert.Equal(t, st.Size(), f.Size)

	store.Remove(f)
	assert.NoFileExists(t, f.AbsPath)
	assert.NoFileExists(t, f.ThumbAbsPath)
}

func TestPhotoStore_RejectsNonImage(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	_, err = store.Save(fileHeaderFor(t, "cv.png", []byte("definitely not a picture")))
	assert.ErrorIs(t, err, ErrUploadNotAnImage)
}

func TestPhotoStore_RejectsOversized(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), 100)
	require.NoError(t, err)

	_, err = store.Save(fileHeaderFor(t, "big.png", pngBytes(t, 64, 64)))
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}
