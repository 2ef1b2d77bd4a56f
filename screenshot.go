package buddhabrot

import (
	"bytes"
	"compress/flate"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// frameToImage unpacks a row-major 0x00RRGGBB frame into an *image.RGBA.
// Encoding to PNG is done with the standard library: no repository in the
// reference corpus ships an alternative image codec to ground an
// out-of-tree dependency on.
func frameToImage(w, h int, frame []uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range frame {
		img.Set(i%w, i/w, color.RGBA{
			R: uint8(px >> 16),
			G: uint8(px >> 8),
			B: uint8(px),
			A: 255,
		})
	}
	return img
}

// stampCaption burns a one-line status caption into the bottom-left corner
// of img using the fixed 7x13 bitmap face, the same face the reference
// corpus's on-screen diagnostic overlays reach for rather than parsing a
// real font file.
func stampCaption(img *image.RGBA, caption string) {
	bounds := img.Bounds()
	baseline := bounds.Max.Y - 6
	if baseline < basicfont.Face7x13.Height {
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(6, baseline),
	}
	draw.Draw(img, image.Rect(4, baseline-basicfont.Face7x13.Height, bounds.Max.X, baseline+4),
		image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)
	drawer.DrawString(caption)
}

// saveScreenshot encodes the current frame to a PNG file at path, logging
// both the PNG size and a flate-compression estimate of the raw pixels —
// the closest standard-library analogue to the reference implementation's
// qCompress size comparison in Buddha::saveScreenshot.
func (c *Coordinator) saveScreenshot(path string) error {
	c.mu.Lock()
	view := c.view
	frame := append([]uint32(nil), c.frame...)
	tonemap := c.tonemap
	c.mu.Unlock()

	if view == nil || len(frame) == 0 {
		return fmt.Errorf("buddhabrot: no frame available to save")
	}

	img := frameToImage(view.W, view.H, frame)
	stampCaption(img, fmt.Sprintf("contrast=%d lightness=%d scale=%.3g",
		tonemap.Contrast, tonemap.Lightness, view.Scale))

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return fmt.Errorf("buddhabrot: encode screenshot: %w", err)
	}
	if err := os.WriteFile(path, pngBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("buddhabrot: write screenshot: %w", err)
	}

	raw := make([]byte, len(frame)*4)
	for i, px := range frame {
		raw[i*4+0] = byte(px >> 24)
		raw[i*4+1] = byte(px >> 16)
		raw[i*4+2] = byte(px >> 8)
		raw[i*4+3] = byte(px)
	}
	var compressed bytes.Buffer
	if fw, err := flate.NewWriter(&compressed, flate.BestCompression); err == nil {
		fw.Write(raw)
		fw.Close()
	}

	c.logger.Infof("screenshot saved to %s (png %d bytes, raw %d bytes, flate estimate %d bytes)",
		path, pngBuf.Len(), len(raw), compressed.Len())
	return nil
}
