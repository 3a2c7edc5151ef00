package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newLocalUploader(t *testing.T) (*Uploader, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := NewLocalStorage(dir, "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	return &Uploader{
		Storage:  st,
		MaxBytes: 64 * 1024,
		Now:      func() time.Time { return time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC) },
	}, dir
}

func codeOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func TestSave_StoresUnderFieldDir(t *testing.T) {
	u, dir := newLocalUploader(t)
	url, err := u.Save(context.Background(), "question_image", bytes.NewReader(pngBytes(t, 8, 8)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "/uploads/questions/20240817-") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %s", url)
	}
	path := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	u.Remove(context.Background(), &url)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be removed")
	}
}

func TestSave_Rejections(t *testing.T) {
	u, _ := newLocalUploader(t)
	ctx := context.Background()

	if _, err := u.Save(ctx, "dokumen", bytes.NewReader(pngBytes(t, 2, 2))); codeOf(err) != fiber.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %v", err)
	}
	if _, err := u.Save(ctx, "avatar", strings.NewReader("bukan gambar, cuma teks")); codeOf(err) != fiber.StatusUnsupportedMediaType {
		t.Fatalf("text file: expected 415, got %v", err)
	}
	if _, err := u.Save(ctx, "avatar", bytes.NewReader(nil)); codeOf(err) != fiber.StatusBadRequest {
		t.Fatalf("empty file: expected 400, got %v", err)
	}
	big := bytes.Repeat([]byte{0}, int(u.MaxBytes)+1)
	copy(big, pngBytes(t, 1, 1))
	if _, err := u.Save(ctx, "avatar", bytes.NewReader(big)); codeOf(err) != fiber.StatusRequestEntityTooLarge {
		t.Fatalf("large file: expected 413, got %v", err)
	}
}

func TestSave_ConvertsToWebP(t *testing.T) {
	u, dir := newLocalUploader(t)
	u.ConvertWebP = true

	url, err := u.Save(context.Background(), "package_cover", bytes.NewReader(pngBytes(t, 32, 16)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(url, ".webp") {
		t.Fatalf("expected webp url, got %s", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	if err != nil {
		t.Fatal(err)
	}
	if sniffMIME(data) != "image/webp" {
		t.Fatalf("stored file is %s", sniffMIME(data))
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Put(context.Background(), "../keluar.png", strings.NewReader("x"), "image/png"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestOSSStorage_PublicURL(t *testing.T) {
	s := &OSSStorage{Endpoint: "https://oss-ap-southeast-5.aliyuncs.com", BucketName: "soalku"}
	if got := s.PublicURL("soalku/icons/a.png"); got != "https://soalku.oss-ap-southeast-5.aliyuncs.com/soalku/icons/a.png" {
		t.Fatalf("got %s", got)
	}
	key, err := s.keyFromPublicURL("https://soalku.oss-ap-southeast-5.aliyuncs.com/soalku/icons/a.png")
	if err != nil || key != "soalku/icons/a.png" {
		t.Fatalf("key %q err %v", key, err)
	}

	s.PublicBase = "https://cdn.soalku.id"
	if got := s.PublicURL("x/y.webp"); got != "https://cdn.soalku.id/x/y.webp" {
		t.Fatalf("got %s", got)
	}
}
