package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"soalku_backend/internals/configs"
	"soalku_backend/internals/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const DefaultMaxBytes int64 = 2 << 20

type Uploader struct {
	Storage     Storage
	MaxBytes    int64
	ConvertWebP bool
	Now         func() time.Time
}

// NewFromConfig memilih backend sesuai UPLOAD_DRIVER.
func NewFromConfig(cfg *configs.Config) (*Uploader, error) {
	var (
		st  Storage
		err error
	)
	switch cfg.UploadDriver {
	case "oss":
		st, err = NewOSSStorage(OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSAccessKeyID,
			AccessKeySecret: cfg.OSSAccessKeySecret,
			Bucket:          cfg.OSSBucket,
			PublicBase:      cfg.OSSPublicBase,
			Prefix:          "soalku",
		})
	default:
		st, err = NewLocalStorage(cfg.UploadDir, cfg.UploadPublicBaseURL)
	}
	if err != nil {
		return nil, err
	}
	return &Uploader{Storage: st, MaxBytes: cfg.UploadMaxBytes, ConvertWebP: cfg.UploadConvertWebP}, nil
}

func (u *Uploader) maxBytes() int64 {
	if u.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return u.MaxBytes
}

func (u *Uploader) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

// DirFor subfolder tujuan untuk field multipart.
func DirFor(field string) (string, error) {
	dir, ok := constants.UploadFieldDirs[field]
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("field upload tidak dikenal: %s", field))
	}
	return dir, nil
}

// Save memvalidasi lalu menyimpan gambar. Error validasi berupa *fiber.Error (400/413/415).
func (u *Uploader) Save(ctx context.Context, field string, r io.Reader) (string, error) {
	dir, err := DirFor(field)
	if err != nil {
		return "", err
	}

	limit := u.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("baca file: %w", err)
	}
	if len(data) == 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "File kosong")
	}
	if int64(len(data)) > limit {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("Ukuran file maksimal %d KB", limit/1024))
	}

	mime := sniffMIME(data)
	ext, ok := constants.AllowedImageMIME[mime]
	if !ok {
		return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Hanya menerima gambar (jpeg, png, webp, gif)")
	}

	// gif dibiarkan apa adanya supaya animasi tidak hilang
	if u.ConvertWebP && mime != "image/gif" {
		converted, err := toWebP(data, mime)
		if err != nil {
			return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Gambar tidak bisa diproses")
		}
		data, mime, ext = converted, "image/webp", ".webp"
	}

	key := fmt.Sprintf("%s/%s-%s%s", dir, u.now().Format("20060102"), uuid.NewString(), ext)
	url, err := u.Storage.Put(ctx, key, bytes.NewReader(data), mime)
	if err != nil {
		return "", fmt.Errorf("simpan file: %w", err)
	}
	log.Printf("[UPLOAD] %s -> %s (%d bytes)", field, key, len(data))
	return url, nil
}

func (u *Uploader) SaveFileHeader(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes() {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("Ukuran file maksimal %d KB", u.maxBytes()/1024))
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("buka file: %w", err)
	}
	defer f.Close()
	return u.Save(ctx, field, f)
}

// FromForm mengambil file dari field multipart.
// Tidak ada file -> ("", nil) supaya controller bisa lanjut tanpa mengganti gambar.
func (u *Uploader) FromForm(c *fiber.Ctx, field string) (string, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return "", nil
	}
	return u.SaveFileHeader(c.UserContext(), field, fh)
}

// Remove best-effort, kegagalan hanya dicatat.
func (u *Uploader) Remove(ctx context.Context, publicURL *string) {
	if u == nil || publicURL == nil || strings.TrimSpace(*publicURL) == "" {
		return
	}
	if err := u.Storage.Delete(ctx, *publicURL); err != nil {
		log.Printf("[UPLOAD] gagal hapus %s: %v", *publicURL, err)
	}
}
