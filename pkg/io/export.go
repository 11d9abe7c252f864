package io

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/txwater/studymap/pkg/errors"
)

// PNGOptions controls [WritePNG].
type PNGOptions struct {
	// DPI is stored in the pHYs chunk. Zero omits the chunk.
	DPI int
	// Trim crops the image to the pixels that differ from Background.
	Trim bool
	// Pad is the margin in pixels kept around trimmed content.
	Pad int
	// Background is the canvas colour; nil means white.
	Background color.Color
}

// WritePNG encodes img to path, replacing any existing file. Failures carry
// errors.ErrCodeWrite and leave no file behind.
func WritePNG(path string, img image.Image, opts PNGOptions) error {
	if opts.Trim {
		img = Trim(img, opts.background(), opts.Pad)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create output directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create temporary file for %s", path)
	}
	tmpName := tmp.Name()

	if err := EncodePNG(tmp, img, opts.DPI); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWrite, err, "encode %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

// EncodePNG writes img as PNG with a pHYs chunk for dpi (when positive).
func EncodePNG(w io.Writer, img image.Image, dpi int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	data := buf.Bytes()
	if dpi <= 0 {
		_, err := w.Write(data)
		return err
	}

	// Signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 CRC).
	const afterIHDR = 33
	if _, err := w.Write(data[:afterIHDR]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(dpi)); err != nil {
		return err
	}
	_, err := w.Write(data[afterIHDR:])
	return err
}

func physChunk(dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) / 0.0254))
	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// ReadDPI returns the DPI stored in a PNG's pHYs chunk, or 0 if absent.
func ReadDPI(r io.Reader) (int, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return 0, err
	}
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint32(hdr[:4])
		typ := string(hdr[4:])
		switch typ {
		case "pHYs":
			var body [9]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return 0, err
			}
			if body[8] != 1 {
				return 0, nil
			}
			ppm := binary.BigEndian.Uint32(body[:4])
			return int(math.Round(float64(ppm) * 0.0254)), nil
		case "IDAT", "IEND":
			return 0, nil
		}
		if _, err := io.CopyN(io.Discard, r, int64(n)+4); err != nil {
			return 0, err
		}
	}
}

// Trim crops img to the bounding box of pixels that differ from bg, grown
// by pad pixels on each side and filled with bg. An image with no content
// is returned unchanged.
func Trim(img image.Image, bg color.Color, pad int) image.Image {
	content := ContentBounds(img, bg)
	if content.Empty() {
		return img
	}
	cropped := imaging.Crop(img, content)
	if pad <= 0 {
		return cropped
	}
	canvas := imaging.New(content.Dx()+2*pad, content.Dy()+2*pad, bg)
	return imaging.Paste(canvas, cropped, image.Pt(pad, pad))
}

// ContentBounds returns the smallest rectangle holding every pixel that
// differs from bg.
func ContentBounds(img image.Image, bg color.Color) image.Rectangle {
	b := img.Bounds()
	br, bgc, bb, ba := bg.RGBA()
	differs := func(x, y int) bool {
		r, g, bl, a := img.At(x, y).RGBA()
		return r != br || g != bgc || bl != bb || a != ba
	}
	if rgba, ok := img.(*image.RGBA); ok {
		want := color.RGBAModel.Convert(bg).(color.RGBA)
		differs = func(x, y int) bool {
			i := rgba.PixOffset(x, y)
			p := rgba.Pix[i : i+4 : i+4]
			return p[0] != want.R || p[1] != want.G || p[2] != want.B || p[3] != want.A
		}
	}

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !differs(x, y) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func (o PNGOptions) background() color.Color {
	if o.Background == nil {
		return color.White
	}
	return o.Background
}
