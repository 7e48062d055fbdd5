package uploads

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxFiles     = 10
	DefaultMaxFileBytes = 5 << 20
)

var allowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// File is an uploaded image held in memory. MIME is sniffed from Data, never
// taken from the client.
type File struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

type Limits struct {
	MaxFiles     int
	MaxFileBytes int64
}

func (l Limits) normalize() Limits {
	if l.MaxFiles <= 0 {
		l.MaxFiles = DefaultMaxFiles
	}
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = DefaultMaxFileBytes
	}
	return l
}

// Result lists the files that passed and one warning per problem found.
type Result struct {
	Accepted []File   `json:"-"`
	Warnings []string `json:"warnings"`
}

// Validate truncates files to the remaining capacity and drops oversized or
// non-image files. existingCount is how many images the gallery already holds.
func Validate(files []File, existingCount int, limits Limits) Result {
	limits = limits.normalize()
	res := Result{Accepted: []File{}, Warnings: []string{}}

	remaining := max(limits.MaxFiles-existingCount, 0)
	if len(files) > remaining {
		files = files[:remaining]
		res.Warnings = append(res.Warnings, fmt.Sprintf("최대 %d장까지 업로드할 수 있습니다.", limits.MaxFiles))
	}

	for _, f := range files {
		if f.Size > limits.MaxFileBytes || int64(len(f.Data)) > limits.MaxFileBytes {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: 이미지 파일은 %dMB 이하여야 합니다.", f.Name, limits.MaxFileBytes>>20))
			continue
		}
		mime := Sniff(f.Data)
		if !allowed(mime) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: 이미지 파일만 업로드할 수 있습니다. (JPG, PNG, GIF, WEBP)", f.Name))
			continue
		}
		f.MIME = mime
		res.Accepted = append(res.Accepted, f)
	}
	return res
}

// Sniff detects the content type of data, without parameters.
func Sniff(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

func allowed(mime string) bool {
	for _, m := range allowedMIMEs {
		if m == mime {
			return true
		}
	}
	return false
}

// DataURL renders f as an inline data URL for previews.
func DataURL(f File) string {
	mime := f.MIME
	if mime == "" {
		mime = Sniff(f.Data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// FromMultipart reads uploaded parts into memory. Each part is read up to one
// byte past maxBytes so oversized files are detected without buffering them whole.
func FromMultipart(headers []*multipart.FileHeader, maxBytes int64) ([]File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	out := make([]File, 0, len(headers))
	for _, fh := range headers {
		if fh == nil {
			continue
		}
		f, err := readPart(fh, maxBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func readPart(fh *multipart.FileHeader, maxBytes int64) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	size := fh.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}
	return File{Name: fh.Filename, MIME: Sniff(data), Size: size, Data: data}, nil
}
