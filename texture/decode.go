package texture

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// maxEncodedSize bounds how much of a single asset is read into memory.
const maxEncodedSize = 64 << 20

// Decode reads an encoded image, sniffing its format from the content, and
// returns it as NRGBA. Images with an edge above maxSize are scaled down to
// fit; maxSize <= 0 disables scaling.
func Decode(r io.Reader, maxSize int) (*image.NRGBA, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEncodedSize))
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedFormat
	}

	var img image.Image
	br := bytes.NewReader(data)
	switch kind.Extension {
	case "jpg":
		img, err = jpeg.Decode(br)
	case "png":
		img, err = png.Decode(br)
	case "gif":
		img, err = gif.Decode(br)
	case "webp":
		img, err = webp.Decode(br)
	case "bmp":
		img, err = bmp.Decode(br)
	case "tif":
		img, err = tiff.Decode(br)
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, kind.MIME.Value)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", kind.Extension)
	}

	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos), nil
	}
	return imaging.Clone(img), nil
}

// Placeholder is the transparent 1x1 texture handed out for assets that failed to load.
func Placeholder() *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, 1, 1))
}
