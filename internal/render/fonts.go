package render

import (
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
	fontErr    error
)

// face returns a Go Regular font face at the given point size and DPI.
func face(points, dpi float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, eris.Wrap(fontErr, "render: parse font")
	}
	f, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    points,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, eris.Wrap(err, "render: create font face")
	}
	return f, nil
}
