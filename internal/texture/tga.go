package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	tgaTypeTrueColor     = 2
	tgaTypeGray          = 3
	tgaTypeTrueColorRLE  = 10
	tgaTypeGrayRLE       = 11
	tgaHeaderSize        = 18
	tgaDescriptorTopDown = 0x20
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed and RLE true-color (24/32 bpp) and grayscale (8 bpp)
// files. The result is always stored top-down regardless of the file's
// origin bit.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	gray := imageType == tgaTypeGray || imageType == tgaTypeGrayRLE
	switch {
	case imageType != tgaTypeTrueColor && imageType != tgaTypeTrueColorRLE && !gray:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has zero size %dx%d", width, height)
	}

	if err := checkSize("TGA", width, height); err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	// check the payload can cover the raster before allocating it
	count := width * height
	bytesPerPix := bpp / 8
	need := count * bytesPerPix
	if imageType == tgaTypeTrueColorRLE || imageType == tgaTypeGrayRLE {
		// one packet covers at most 128 pixels
		need = (count + 127) / 128 * (1 + bytesPerPix)
	}
	if len(data)-offset < need {
		return nil, fmt.Errorf("TGA pixel data truncated")
	}

	r := tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		bytesPerPix: bytesPerPix,
		topToBottom: descriptor&tgaDescriptorTopDown != 0,
	}

	var err error
	if imageType == tgaTypeTrueColorRLE || imageType == tgaTypeGrayRLE {
		err = r.readRLE()
	} else {
		err = r.readRaw()
	}
	if err != nil {
		return nil, err
	}
	return r.img, nil
}

type tgaReader struct {
	img         *image.RGBA
	src         []byte
	pos         int
	width       int
	height      int
	bytesPerPix int
	topToBottom bool
}

// pixel reads one stored pixel (BGR[A] or gray) and advances.
func (r *tgaReader) pixel() (color.RGBA, bool) {
	if r.pos+r.bytesPerPix > len(r.src) {
		return color.RGBA{}, false
	}
	p := r.src[r.pos : r.pos+r.bytesPerPix]
	r.pos += r.bytesPerPix

	if r.bytesPerPix == 1 {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}, true
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bytesPerPix == 4 {
		c.A = p[3]
	}
	return c, true
}

// set stores the n-th pixel in file order.
func (r *tgaReader) set(n int, c color.RGBA) {
	x := n % r.width
	y := n / r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
}

func (r *tgaReader) readRaw() error {
	count := r.width * r.height
	if len(r.src) < count*r.bytesPerPix {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for n := 0; n < count; n++ {
		c, _ := r.pixel()
		r.set(n, c)
	}
	return nil
}

func (r *tgaReader) readRLE() error {
	count := r.width * r.height
	n := 0
	for n < count && r.pos < len(r.src) {
		packet := r.src[r.pos]
		r.pos++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// RLE packet - repeat single pixel
			c, ok := r.pixel()
			if !ok {
				break
			}
			for i := 0; i < run && n < count; i++ {
				r.set(n, c)
				n++
			}
			continue
		}

		// Raw packet - read run pixels
		for i := 0; i < run && n < count; i++ {
			c, ok := r.pixel()
			if !ok {
				break
			}
			r.set(n, c)
			n++
		}
	}
	if n < count {
		return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", n, count)
	}
	return nil
}
