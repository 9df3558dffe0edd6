// Package export turns a dashboard into downloadable files: a slide deck
// (.pptx), a workbook (.xlsx), and optional archival copies on S3.
package export

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"

	"github.com/ignite/cubo-visits/internal/charts"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/metrics"
)

const (
	ContentTypeDeck     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	ContentTypeWorkbook = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	DefaultDeckTitle = "Dashboard de Visitas - Cubo Itaú"
)

// ErrNothingToExport is returned when there are no records at all.
var ErrNothingToExport = errors.New("nothing to export")

// Slide geometry in EMU, 16:9.
const (
	slideWidth   = 12192000
	slideHeight  = 6858000
	slideMargin  = 457200
	slideGap     = 228600
	cardTop      = 2286000
	cardHeight   = 1600200
	pictureTop   = 1371600
	bottomMargin = 304800
)

//go:embed templates/*.xml
var templateFS embed.FS

var (
	engineOnce sync.Once
	engine     *liquid.Engine
	parsed     sync.Map // template file -> *liquid.Template
)

func xmlEngine() *liquid.Engine {
	engineOnce.Do(func() {
		engine = liquid.NewEngine()
		// Escape for XML text and attribute values: {{ name | xml }}
		engine.RegisterFilter("xml", func(s string) string {
			var b strings.Builder
			_ = xml.EscapeText(&b, []byte(s))
			return b.String()
		})
	})
	return engine
}

func renderTemplate(file string, bindings map[string]interface{}) ([]byte, error) {
	if cached, ok := parsed.Load(file); ok {
		return render(file, cached.(*liquid.Template), bindings)
	}
	src, err := templateFS.ReadFile("templates/" + file)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", file, err)
	}
	tpl, perr := xmlEngine().ParseTemplate(src)
	if perr != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, perr)
	}
	parsed.Store(file, tpl)
	return render(file, tpl, bindings)
}

func render(file string, tpl *liquid.Template, bindings map[string]interface{}) ([]byte, error) {
	out, err := tpl.Render(bindings)
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", file, err)
	}
	return out, nil
}

// DeckOptions controls the slide export.
type DeckOptions struct {
	Title            string
	Year             int
	Month            int
	VenueOperator    string
	TopOrganizations int
	Created          time.Time
}

func (o DeckOptions) withDefaults() DeckOptions {
	if o.Title == "" {
		o.Title = DefaultDeckTitle
	}
	if o.VenueOperator == "" {
		o.VenueOperator = metrics.DefaultVenueOperator
	}
	if o.TopOrganizations <= 0 {
		o.TopOrganizations = charts.DefaultTopOrganizations
	}
	if o.Created.IsZero() {
		o.Created = time.Now()
	}
	return o
}

// PeriodLabel formats a year/month selection as shown on the title slide.
func PeriodLabel(year, month int) string {
	if year == 0 || month == 0 {
		return ""
	}
	return fmt.Sprintf("Período: %02d/%d", month, year)
}

// Deck is a rendered-on-write presentation.
type Deck struct {
	Title   string
	Period  string
	Cards   []metrics.Card
	Charts  []ChartImage
	Created time.Time
}

// BuildDeck computes the slide content. Metric boxes use full, mirroring the
// dashboard cards; the charts use filtered.
func BuildDeck(full, filtered []datanorm.Record, opts DeckOptions) (*Deck, error) {
	if len(full) == 0 {
		return nil, ErrNothingToExport
	}
	opts = opts.withDefaults()

	top, err := RenderBarChart("top_organizations.png", "Top organizações",
		charts.TopOrganizations(filtered, opts.VenueOperator, opts.TopOrganizations))
	if err != nil {
		return nil, err
	}
	var weekdayBuckets []charts.Bucket
	if len(filtered) > 0 {
		weekdayBuckets = charts.Weekday(filtered)
	}
	weekday, err := RenderBarChart("weekday.png", "Convites por dia da semana", weekdayBuckets)
	if err != nil {
		return nil, err
	}

	return &Deck{
		Title:   opts.Title,
		Period:  PeriodLabel(opts.Year, opts.Month),
		Cards:   metrics.Compute(full, opts.VenueOperator).Cards(),
		Charts:  []ChartImage{top, weekday},
		Created: opts.Created.UTC(),
	}, nil
}

type part struct {
	name string
	data []byte
}

func (d *Deck) slides() []map[string]interface{} {
	cardWidth := (slideWidth - 2*slideMargin - int64(len(d.Cards)-1)*slideGap) / int64(max(len(d.Cards), 1))
	boxes := make([]map[string]interface{}, len(d.Cards))
	for i, c := range d.Cards {
		boxes[i] = map[string]interface{}{
			"id":    3 + i,
			"x":     slideMargin + int64(i)*(cardWidth+slideGap),
			"y":     cardTop,
			"cx":    cardWidth,
			"cy":    cardHeight,
			"label": c.Label,
			"value": c.Value,
		}
	}

	pictures := make([]map[string]interface{}, len(d.Charts))
	slotWidth := (slideWidth - 2*slideMargin - int64(len(d.Charts)-1)*slideGap) / int64(max(len(d.Charts), 1))
	maxHeight := int64(slideHeight - pictureTop - bottomMargin)
	for i, c := range d.Charts {
		cx := slotWidth
		cy := cx * int64(c.Height) / int64(c.Width)
		if cy > maxHeight {
			cy = maxHeight
			cx = cy * int64(c.Width) / int64(c.Height)
		}
		pictures[i] = map[string]interface{}{
			"id":   3 + i,
			"rel":  fmt.Sprintf("rId%d", 2+i),
			"name": c.Title,
			"file": c.Name,
			"x":    slideMargin + int64(i)*(slotWidth+slideGap),
			"y":    pictureTop,
			"cx":   cx,
			"cy":   cy,
		}
	}

	slides := []map[string]interface{}{
		{"title": d.Title, "subtitle": d.Period, "boxes": boxes, "pictures": []map[string]interface{}{}},
	}
	if len(pictures) > 0 {
		slides = append(slides, map[string]interface{}{
			"title": "Análise do período", "subtitle": d.Period,
			"boxes": []map[string]interface{}{}, "pictures": pictures,
		})
	}
	for i, s := range slides {
		s["number"] = i + 1
		s["id"] = 256 + i
		s["rel"] = fmt.Sprintf("rId%d", 3+i)
	}
	return slides
}

func (d *Deck) parts() ([]part, error) {
	slides := d.slides()
	base := map[string]interface{}{
		"title":         d.Title,
		"created":       d.Created.Format(time.RFC3339),
		"slides":        slides,
		"width":         slideWidth,
		"height":        slideHeight,
		"margin":        slideMargin,
		"content_width": slideWidth - 2*slideMargin,
	}

	fixed := []struct{ name, file string }{
		{"[Content_Types].xml", "content_types.xml"},
		{"_rels/.rels", "root_rels.xml"},
		{"docProps/core.xml", "core.xml"},
		{"docProps/app.xml", "app.xml"},
		{"ppt/presentation.xml", "presentation.xml"},
		{"ppt/_rels/presentation.xml.rels", "presentation_rels.xml"},
		{"ppt/slideMasters/slideMaster1.xml", "slide_master.xml"},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slide_master_rels.xml"},
		{"ppt/slideLayouts/slideLayout1.xml", "slide_layout.xml"},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "slide_layout_rels.xml"},
		{"ppt/theme/theme1.xml", "theme.xml"},
	}

	var parts []part
	for _, f := range fixed {
		data, err := renderTemplate(f.file, base)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{f.name, data})
	}

	for _, s := range slides {
		bindings := make(map[string]interface{}, len(base)+1)
		for k, v := range base {
			bindings[k] = v
		}
		bindings["slide"] = s

		n := s["number"]
		body, err := renderTemplate("slide.xml", bindings)
		if err != nil {
			return nil, err
		}
		rels, err := renderTemplate("slide_rels.xml", bindings)
		if err != nil {
			return nil, err
		}
		parts = append(parts,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", n), body},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), rels},
		)
	}

	for _, c := range d.Charts {
		parts = append(parts, part{"ppt/media/" + c.Name, c.PNG})
	}
	return parts, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo writes the deck as a .pptx package.
func (d *Deck) WriteTo(w io.Writer) (int64, error) {
	parts, err := d.parts()
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("add %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close deck: %w", err)
	}
	return cw.n, nil
}

// Bytes renders the whole deck in memory.
func (d *Deck) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
