package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ignite/cubo-visits/internal/charts"
)

const (
	chartWidth      = 960
	chartPad        = 16
	chartHeaderH    = 44
	chartRowH       = 26
	chartCountSpace = 56
	maxLabelWidth   = 320
)

// emptyChartText replaces the bars when there is nothing to plot.
const emptyChartText = "Sem dados para o período selecionado"

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText       = color.RGBA{0x1f, 0x2a, 0x44, 0xff}
	colorMuted      = color.RGBA{0x5a, 0x64, 0x78, 0xff}
	colorBar        = color.RGBA{0xec, 0x70, 0x00, 0xff}
	colorGrid       = color.RGBA{0xe3, 0xe7, 0xee, 0xff}
)

// ChartImage is one rendered PNG chart.
type ChartImage struct {
	Name   string
	Title  string
	PNG    []byte
	Width  int
	Height int
}

// RenderBarChart draws buckets as horizontal bars, one row per bucket in the
// given order, each labelled with its count.
func RenderBarChart(name, title string, buckets []charts.Bucket) (ChartImage, error) {
	face := basicfont.Face7x13

	rows := len(buckets)
	if rows == 0 {
		rows = 1
	}
	height := chartHeaderH + rows*chartRowH + chartPad
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	drawText(img, face, title, chartPad, chartPad+13, colorText)
	draw.Draw(img, image.Rect(chartPad, chartHeaderH-8, chartWidth-chartPad, chartHeaderH-7), image.NewUniform(colorGrid), image.Point{}, draw.Src)

	if len(buckets) == 0 {
		drawText(img, face, emptyChartText, chartPad, chartHeaderH+chartRowH/2+4, colorMuted)
		return encodeChart(name, title, img)
	}

	labels := make([]string, len(buckets))
	labelW, maxCount := 0, 0
	for i, b := range buckets {
		labels[i] = fitLabel(face, b.Label, maxLabelWidth)
		if w := font.MeasureString(face, labels[i]).Ceil(); w > labelW {
			labelW = w
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	barX := chartPad + labelW + 8
	barSpace := chartWidth - barX - chartPad - chartCountSpace
	for i, b := range buckets {
		top := chartHeaderH + i*chartRowH
		baseline := top + chartRowH/2 + 4
		drawText(img, face, labels[i], chartPad, baseline, colorText)

		w := 0
		if maxCount > 0 {
			w = b.Count * barSpace / maxCount
		}
		if b.Count > 0 && w < 2 {
			w = 2
		}
		draw.Draw(img, image.Rect(barX, top+5, barX+w, top+chartRowH-5), image.NewUniform(colorBar), image.Point{}, draw.Src)
		drawText(img, face, strconv.Itoa(b.Count), barX+w+6, baseline, colorMuted)
	}
	return encodeChart(name, title, img)
}

func encodeChart(name, title string, img *image.RGBA) (ChartImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ChartImage{}, fmt.Errorf("encode chart %s: %w", name, err)
	}
	b := img.Bounds()
	return ChartImage{Name: name, Title: title, PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func drawText(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// fitLabel shortens s with an ellipsis until it fits in maxWidth pixels.
func fitLabel(face font.Face, s string, maxWidth int) string {
	if font.MeasureString(face, s).Ceil() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return "..."
}
