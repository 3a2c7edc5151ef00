package upload

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	webpMaxSide = 1600
	webpQuality = 80
)

// sniffMIME dari 512 byte pertama (bukan dari header klien).
func sniffMIME(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

func decodeImage(data []byte, mime string) (image.Image, error) {
	if mime == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// toWebP: perkecil (keep aspect) sampai sisi terpanjang <= 1600 lalu encode WebP.
func toWebP(data []byte, mime string) ([]byte, error) {
	img, err := decodeImage(data, mime)
	if err != nil {
		return nil, fmt.Errorf("decode gambar: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > webpMaxSide || b.Dy() > webpMaxSide {
		img = imaging.Fit(img, webpMaxSide, webpMaxSide, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
