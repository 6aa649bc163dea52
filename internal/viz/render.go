package viz

import (
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

// Renderer turns a declarative ArtifactSpec into raster bytes.
type Renderer interface {
	Render(spec *ArtifactSpec) ([]byte, error)
}

type ggRenderer struct {
	log *logger.Logger

	titleFace font.Face
	cellFace  font.Face
}

// NewRenderer builds the PNG renderer. RENDER_FONT may point at a TTF file;
// without it gg's built-in face is used (good enough for tests and dev).
func NewRenderer(log *logger.Logger) (Renderer, error) {
	r := &ggRenderer{log: log.With("service", "Renderer")}

	fontPath := strings.TrimSpace(os.Getenv("RENDER_FONT"))
	if fontPath != "" {
		titleFace, err := loadFontFace(fontPath, 22)
		if err != nil {
			return nil, fmt.Errorf("could not load render font: %w", err)
		}
		cellFace, err := loadFontFace(fontPath, 16)
		if err != nil {
			return nil, fmt.Errorf("could not load render font: %w", err)
		}
		r.titleFace = titleFace
		r.cellFace = cellFace
	}
	return r, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func (r *ggRenderer) Render(spec *ArtifactSpec) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil artifact spec")
	}
	switch spec.Kind {
	case SpecTable:
		if spec.Table == nil {
			return nil, fmt.Errorf("table spec missing")
		}
		return r.renderTable(spec.Table)
	case SpecGraph:
		if spec.Graph == nil {
			return nil, fmt.Errorf("graph spec missing")
		}
		return r.renderGraph(spec.Graph)
	case SpecBoth:
		if spec.Table == nil || spec.Graph == nil {
			return nil, fmt.Errorf("combined spec missing parts")
		}
		return r.renderCombined(spec.Table, spec.Graph)
	}
	return nil, fmt.Errorf("unknown spec kind %q", spec.Kind)
}

const (
	cellW    = 96.0
	cellH    = 34.0
	titleH   = 52.0
	padding  = 24.0
	graphW   = 640.0
	graphH   = 420.0
	graphPad = 36.0
)

var seriesColors = []color.NRGBA{
	{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF},
	{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF},
	{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF},
	{R: 0x94, G: 0x67, B: 0xBD, A: 0xFF},
	{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF},
}

func (r *ggRenderer) renderTable(t *TableSpec) ([]byte, error) {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if len(t.Headers) > cols {
		cols = len(t.Headers)
	}
	if cols == 0 {
		return nil, fmt.Errorf("empty table spec")
	}

	rows := len(t.Rows)
	headerRows := 0
	if len(t.Headers) > 0 {
		headerRows = 1
	}
	w := int(padding*2 + float64(cols)*cellW)
	h := int(padding*2 + titleH + float64(rows+headerRows)*cellH)

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	if r.titleFace != nil {
		dc.SetFontFace(r.titleFace)
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(t.Title, float64(w)/2, padding+titleH/2, 0.5, 0.35)

	if r.cellFace != nil {
		dc.SetFontFace(r.cellFace)
	}

	top := padding + titleH
	left := padding

	drawRow := func(cells []string, y float64, header bool) {
		for c := 0; c < cols; c++ {
			x := left + float64(c)*cellW
			if header {
				dc.SetRGBA(0.92, 0.94, 0.97, 1)
				dc.DrawRectangle(x, y, cellW, cellH)
				dc.Fill()
			}
			dc.SetRGBA(0.6, 0.6, 0.6, 1)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, cellW, cellH)
			dc.Stroke()

			var text string
			if c < len(cells) {
				text = cells[c]
			}
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(text, x+cellW/2, y+cellH/2, 0.5, 0.35)
		}
	}

	y := top
	if headerRows == 1 {
		drawRow(t.Headers, y, true)
		y += cellH
	}
	for _, row := range t.Rows {
		drawRow(row, y, false)
		y += cellH
	}

	return encodePNG(dc)
}

func (r *ggRenderer) renderGraph(g *GraphSpec) ([]byte, error) {
	if len(g.Expressions) == 0 {
		return nil, fmt.Errorf("empty graph spec")
	}
	xmin, xmax := g.XMin, g.XMax
	if xmax <= xmin {
		xmin, xmax = -6.5, 6.5
	}

	compiled := make([]*Expr, 0, len(g.Expressions))
	for _, src := range g.Expressions {
		e, err := CompileExpression(src)
		if err != nil {
			return nil, fmt.Errorf("cannot plot %q: %w", src, err)
		}
		compiled = append(compiled, e)
	}

	const samples = 600
	ymin, ymax := math.Inf(1), math.Inf(-1)
	values := make([][]float64, len(compiled))
	for i, e := range compiled {
		values[i] = make([]float64, samples+1)
		for s := 0; s <= samples; s++ {
			x := xmin + (xmax-xmin)*float64(s)/samples
			y := e.Eval(x)
			values[i][s] = y
			if !math.IsNaN(y) && !math.IsInf(y, 0) {
				if y < ymin {
					ymin = y
				}
				if y > ymax {
					ymax = y
				}
			}
		}
	}
	if math.IsInf(ymin, 1) || math.IsInf(ymax, -1) {
		return nil, fmt.Errorf("expressions produced no finite values")
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	// Keep wild functions (tan) readable.
	if ymax > 10 {
		ymax = 10
	}
	if ymin < -10 {
		ymin = -10
	}

	dc := gg.NewContext(int(graphW), int(graphH))
	dc.SetColor(color.White)
	dc.Clear()
	if r.cellFace != nil {
		dc.SetFontFace(r.cellFace)
	}

	plotW := graphW - 2*graphPad
	plotH := graphH - 2*graphPad
	toPx := func(x, y float64) (float64, float64) {
		px := graphPad + (x-xmin)/(xmax-xmin)*plotW
		py := graphPad + (1-(y-ymin)/(ymax-ymin))*plotH
		return px, py
	}

	// Axes.
	dc.SetRGBA(0.3, 0.3, 0.3, 1)
	dc.SetLineWidth(1)
	if ymin < 0 && ymax > 0 {
		x0, y0 := toPx(xmin, 0)
		x1, _ := toPx(xmax, 0)
		dc.DrawLine(x0, y0, x1, y0)
		dc.Stroke()
	}
	if xmin < 0 && xmax > 0 {
		x0, y0 := toPx(0, ymin)
		_, y1 := toPx(0, ymax)
		dc.DrawLine(x0, y0, x0, y1)
		dc.Stroke()
	}

	for i := range compiled {
		dc.SetColor(seriesColors[i%len(seriesColors)])
		dc.SetLineWidth(2)
		started := false
		for s := 0; s <= samples; s++ {
			x := xmin + (xmax-xmin)*float64(s)/samples
			y := values[i][s]
			if math.IsNaN(y) || math.IsInf(y, 0) || y < ymin-5 || y > ymax+5 {
				if started {
					dc.Stroke()
					started = false
				}
				continue
			}
			px, py := toPx(x, y)
			if !started {
				dc.MoveTo(px, py)
				started = true
			} else {
				dc.LineTo(px, py)
			}
		}
		if started {
			dc.Stroke()
		}

		label := prettyExpr(compiled[i].Source())
		dc.DrawStringAnchored(label, graphW-graphPad, graphPad+float64(i)*18, 1, 0.35)
	}

	return encodePNG(dc)
}

// renderCombined stacks the table above the graph in one image.
func (r *ggRenderer) renderCombined(t *TableSpec, g *GraphSpec) ([]byte, error) {
	tablePNG, err := r.renderTable(t)
	if err != nil {
		return nil, err
	}
	graphPNG, err := r.renderGraph(g)
	if err != nil {
		return nil, err
	}
	tableImg, err := png.Decode(bytesReader(tablePNG))
	if err != nil {
		return nil, err
	}
	graphImg, err := png.Decode(bytesReader(graphPNG))
	if err != nil {
		return nil, err
	}

	tb := tableImg.Bounds()
	gb := graphImg.Bounds()
	w := tb.Dx()
	if gb.Dx() > w {
		w = gb.Dx()
	}
	h := tb.Dy() + gb.Dy()

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImageAnchored(tableImg, w/2, tb.Dy()/2, 0.5, 0.5)
	dc.DrawImageAnchored(graphImg, w/2, tb.Dy()+gb.Dy()/2, 0.5, 0.5)

	return encodePNG(dc)
}
