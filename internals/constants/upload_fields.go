package constants

// Field multipart -> subfolder tujuan upload.
var UploadFieldDirs = map[string]string{
	"avatar":         "avatars",
	"question_image": "questions",
	"package_cover":  "packages",
	"icon":           "icons",
}

// MIME gambar yang diterima (hasil sniff konten, bukan header klien).
var AllowedImageMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}
