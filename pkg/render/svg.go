// Package render draws labeled polygons as SVG.
//
// The renderer fits the union of all polygon bounds into the viewport,
// draws each ring as a path (holes via even-odd fill), and marks each
// computed label point, optionally with its clearance circle.
package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/io"
)

// Default viewport size in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0

	defaultPadding = 20.0
	markerRadius   = 3.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width   float64
	height  float64
	padding float64
	markers bool
	circles bool
}

// WithSize sets the viewport size in pixels.
func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = width, height }
}

// WithPadding sets the margin between the drawing and the viewport edge.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithoutMarkers suppresses the label point markers.
func WithoutMarkers() SVGOption { return func(r *svgRenderer) { r.markers = false } }

// WithCircles draws each label's clearance circle (radius = distance to the
// boundary), which makes the precision of the pole visually checkable.
func WithCircles() SVGOption { return func(r *svgRenderer) { r.circles = true } }

// viewport maps world coordinates into screen space. SVG y grows downward,
// so the y axis flips.
type viewport struct {
	scale      float64
	offX, offY float64
	height     float64
	padding    float64
}

func newViewport(b orb.Bound, width, height, padding float64) viewport {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]

	scale := 1.0
	if w > 0 && h > 0 {
		scale = math.Min((width-2*padding)/w, (height-2*padding)/h)
	}
	return viewport{
		scale:   scale,
		offX:    b.Min[0],
		offY:    b.Min[1],
		height:  height,
		padding: padding,
	}
}

func (v viewport) x(wx float64) float64 { return v.padding + (wx-v.offX)*v.scale }
func (v viewport) y(wy float64) float64 { return v.height - v.padding - (wy-v.offY)*v.scale }

// RenderSVG renders labels and their polygons as an SVG document.
func RenderSVG(labels []io.Label, opts ...SVGOption) []byte {
	r := svgRenderer{
		width:   DefaultWidth,
		height:  DefaultHeight,
		padding: defaultPadding,
		markers: true,
	}
	for _, opt := range opts {
		opt(&r)
	}

	vp := newViewport(unionBound(labels), r.width, r.height, r.padding)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	for _, l := range labels {
		renderPolygon(&buf, vp, l.Feature.Polygon)
	}
	if r.circles {
		for _, l := range labels {
			if l.Distance > 0 {
				fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#2aa" stroke-dasharray="4 2"/>`+"\n",
					vp.x(l.Location[0]), vp.y(l.Location[1]), l.Distance*vp.scale)
			}
		}
	}
	if r.markers {
		for _, l := range labels {
			fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.1f" fill="#d33" class="label"/>`+"\n",
				vp.x(l.Location[0]), vp.y(l.Location[1]), markerRadius)
			if l.Feature.Name != "" {
				fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-size="12" text-anchor="middle">%s</text>`+"\n",
					vp.x(l.Location[0]), vp.y(l.Location[1])-6, escapeText(l.Feature.Name))
			}
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderPolygon emits one path per polygon with all rings; even-odd fill
// punches the holes out.
func renderPolygon(buf *bytes.Buffer, vp viewport, p orb.Polygon) {
	var d bytes.Buffer
	for _, ring := range p {
		for i, pt := range ring {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.2f %.2f ", cmd, vp.x(pt[0]), vp.y(pt[1]))
		}
		d.WriteString("Z ")
	}
	fmt.Fprintf(buf, `  <path d="%s" fill="#cde" fill-rule="evenodd" stroke="#345" stroke-width="1"/>`+"\n",
		bytes.TrimSpace(d.Bytes()))
}

// unionBound returns the combined bound of all label polygons.
func unionBound(labels []io.Label) orb.Bound {
	if len(labels) == 0 {
		return orb.Bound{}
	}
	b := labels[0].Feature.Polygon.Bound()
	for _, l := range labels[1:] {
		b = b.Union(l.Feature.Polygon.Bound())
	}
	return b
}

// escapeText escapes the XML special characters that can appear in names.
func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
