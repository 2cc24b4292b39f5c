// Package certimage renders course certificates to PNG
package certimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/olp/portal/internal/models"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 880
	Height = 600

	border = 18
)

// ErrNotEligible is returned when the certificate has not been earned
var ErrNotEligible = errors.New("certificate not eligible")

var (
	paper = color.RGBA{R: 0xfb, G: 0xf8, B: 0xf0, A: 0xff}
	ink   = color.RGBA{R: 0x22, G: 0x2b, B: 0x3a, A: 0xff}
	gold  = color.RGBA{R: 0xb8, G: 0x8a, B: 0x2e, A: 0xff}
)

// line is one centered text row, scale enlarges the bitmap font
type line struct {
	text  string
	y     int
	scale int
	color color.Color
}

// Render draws the certificate and returns it PNG encoded
func Render(cert *models.Certificate) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cert); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the PNG encoded certificate to w
func Encode(w io.Writer, cert *models.Certificate) error {
	if cert == nil || !cert.Eligible {
		return ErrNotEligible
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(gold), image.Point{}, xdraw.Src)
	inner := image.Rect(border, border, Width-border, Height-border)
	xdraw.Draw(img, inner, image.NewUniform(paper), image.Point{}, xdraw.Src)

	lines := []line{
		{text: "CERTIFICATE OF COMPLETION", y: 110, scale: 4, color: gold},
		{text: "This certifies that", y: 200, scale: 2, color: ink},
		{text: cert.StudentName, y: 260, scale: 4, color: ink},
		{text: "has successfully completed the course", y: 330, scale: 2, color: ink},
		{text: cert.CourseName, y: 390, scale: 3, color: ink},
	}
	if cert.InstructorName != "" {
		lines = append(lines, line{text: "Instructor: " + cert.InstructorName, y: 470, scale: 2, color: ink})
	}
	if cert.IssueDate != "" {
		lines = append(lines, line{text: "Issued " + cert.IssueDate, y: 510, scale: 1, color: ink})
	}
	if cert.CertificateNumber != "" {
		lines = append(lines, line{text: "No. " + cert.CertificateNumber, y: 540, scale: 1, color: ink})
	}

	for _, l := range lines {
		drawCentered(img, l)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}
	return nil
}

// drawCentered renders the text at 1:1 and scales it onto the canvas
// Text wider than the canvas is shrunk to fit
func drawCentered(dst *image.RGBA, l line) {
	if l.text == "" {
		return
	}
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, l.text).Ceil()
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	src := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(l.color),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(l.text)

	scale := l.scale
	maxWidth := Width - 4*border
	for scale > 1 && textWidth*scale > maxWidth {
		scale--
	}
	w, h := textWidth*scale, textHeight*scale
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}

	x := (Width - w) / 2
	y := l.y - h/2
	target := image.Rect(x, y, x+w, y+h)
	xdraw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}
