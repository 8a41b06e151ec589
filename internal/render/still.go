package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/NoID1290/WeatherWatch/internal/models"
)

// Canvas limits keep the endpoint from being asked to allocate absurd
// images.
const (
	minDimension = 64
	maxDimension = 4096
)

// skyColors picks the gradient endpoints per condition
var skyColors = map[string][2]color.RGBA{
	"Clear":         {{R: 0x3a, G: 0x7b, B: 0xd5, A: 0xff}, {R: 0xbc, G: 0xe0, B: 0xf7, A: 0xff}},
	"Partly Cloudy": {{R: 0x5b, G: 0x7d, B: 0xa5, A: 0xff}, {R: 0xc9, G: 0xd6, B: 0xdf, A: 0xff}},
	"Fog":           {{R: 0x8e, G: 0x9e, B: 0xab, A: 0xff}, {R: 0xee, G: 0xf2, B: 0xf3, A: 0xff}},
	"Drizzle":       {{R: 0x4b, G: 0x61, B: 0x7a, A: 0xff}, {R: 0x9b, G: 0xb0, B: 0xc1, A: 0xff}},
	"Rain":          {{R: 0x37, G: 0x47, B: 0x5a, A: 0xff}, {R: 0x85, G: 0x98, B: 0xaa, A: 0xff}},
	"Showers":       {{R: 0x37, G: 0x47, B: 0x5a, A: 0xff}, {R: 0x85, G: 0x98, B: 0xaa, A: 0xff}},
	"Snow":          {{R: 0x83, G: 0x93, B: 0xa6, A: 0xff}, {R: 0xf5, G: 0xf7, B: 0xfa, A: 0xff}},
	"Snow Showers":  {{R: 0x83, G: 0x93, B: 0xa6, A: 0xff}, {R: 0xf5, G: 0xf7, B: 0xfa, A: 0xff}},
	"Thunderstorm":  {{R: 0x23, G: 0x27, B: 0x41, A: 0xff}, {R: 0x5d, G: 0x61, B: 0x8a, A: 0xff}},
}

var defaultSky = [2]color.RGBA{{R: 0x4a, G: 0x6a, B: 0x95, A: 0xff}, {R: 0xb8, G: 0xc9, B: 0xd9, A: 0xff}}

var textColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// RenderStill draws a forecast record onto a PNG canvas of the given size.
// Pure function: same record and size, same image.
func RenderStill(rec *models.ForecastRecord, width, height int) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil forecast record")
	}
	if width < minDimension || width > maxDimension || height < minDimension || height > maxDimension {
		return nil, fmt.Errorf("canvas size %dx%d out of range [%d,%d]", width, height, minDimension, maxDimension)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	drawSkyGradient(img, rec.Condition)

	drawText(img, 10, 22, rec.Location)
	drawText(img, 10, 42, fmt.Sprintf("%.1f C  %s", rec.TemperatureC, rec.Condition))
	drawText(img, 10, 62, fmt.Sprintf("Wind %.0f km/h", rec.WindKPH))

	// Period strip along the bottom
	if n := len(rec.Periods); n > 0 {
		slot := width / n
		y := height - 10
		for i, p := range rec.Periods {
			label := fmt.Sprintf("%s %.0f", p.Name, p.TemperatureC)
			drawText(img, i*slot+6, y, label)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSkyGradient(img *image.RGBA, condition string) {
	sky, ok := skyColors[condition]
	if !ok {
		sky = defaultSky
	}
	top, bottom := sky[0], sky[1]

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := float64(y-b.Min.Y) / float64(b.Dy())
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func drawText(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
