package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// drawLegend draws the horizontal bottom-anchored colorbar with
// comma-grouped tick labels, the "Income" caption, and a hatched swatch
// for missing values when any exist.
func (r *Renderer) drawLegend(scale Scale, missing bool) error {
	h := float64(r.opts.Height)

	barW := r.mapW * 0.5
	barH := h * 0.03
	barX := r.mapX + (r.mapW-barW)/2
	barY := r.mapY + r.mapH + h*0.025

	// Gradient bar, one pixel column at a time.
	for i := 0; i < int(barW); i++ {
		t := float64(i) / (barW - 1)
		cr, cg, cb := scale.atT(t)
		r.dc.SetRGBA(cr, cg, cb, choroplethAlpha)
		r.dc.DrawRectangle(barX+float64(i), barY, 1, barH)
		r.dc.Fill()
	}
	r.dc.SetRGBA(0.4, 0.4, 0.4, 1)
	r.dc.SetLineWidth(1)
	r.dc.DrawRectangle(barX, barY, barW, barH)
	r.dc.Stroke()

	// Tick labels at the ends and midpoint.
	tickFace, err := face(9, renderDPI)
	if err != nil {
		return err
	}
	r.dc.SetFontFace(tickFace)
	r.dc.SetRGB(0, 0, 0)

	p := message.NewPrinter(language.English)
	for _, t := range []float64{0, 0.5, 1} {
		v := scale.Min + t*(scale.Max-scale.Min)
		label := p.Sprintf("%.0f", v)
		r.dc.DrawStringAnchored(label, barX+t*barW, barY+barH+h*0.005, 0.5, 1)
	}

	// Caption.
	capFace, err := face(11, renderDPI)
	if err != nil {
		return err
	}
	r.dc.SetFontFace(capFace)
	r.dc.DrawStringAnchored("Income", barX+barW/2, barY+barH+h*0.045, 0.5, 1)

	if !missing {
		return nil
	}

	// Missing-value swatch to the right of the bar.
	swX := barX + barW + barH*1.5
	r.dc.DrawRectangle(swX, barY, barH, barH)
	r.dc.SetRGBA(0.83, 0.83, 0.83, choroplethAlpha)
	r.dc.FillPreserve()
	r.dc.Clip()
	r.hatch(swX, barY, swX+barH, barY+barH)
	r.dc.ResetClip()
	r.dc.DrawRectangle(swX, barY, barH, barH)
	r.dc.SetRGBA(0.5, 0.5, 0.5, 1)
	r.dc.SetLineWidth(1)
	r.dc.Stroke()

	r.dc.SetFontFace(tickFace)
	r.dc.SetRGB(0, 0, 0)
	r.dc.DrawStringAnchored("Missing values", swX+barH*1.4, barY+barH/2, 0, 0.5)

	return nil
}
