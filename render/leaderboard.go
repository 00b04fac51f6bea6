// Package render draws the leaderboard as a PNG image.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"decryptzone/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

const maxNameRunes = 16

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

// Style controls the leaderboard image geometry
type Style struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
}

// LeaderboardRenderer turns leaderboard entries into PNG bytes
type LeaderboardRenderer struct {
	style Style
	title string
}

// NewLeaderboardRenderer creates a renderer with the default dark style
func NewLeaderboardRenderer(title string) *LeaderboardRenderer {
	return &LeaderboardRenderer{
		title: title,
		style: Style{
			Width:     420,
			MinHeight: 160,
			Padding:   15,
			RowHeight: 26,
		},
	}
}

// Render draws entries in the given order. An empty board renders a placeholder row.
func (r *LeaderboardRenderer) Render(entries []*models.LeaderboardEntry) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(entries),
		}).Debug("Leaderboard image generation completed")
	}()

	pad := float64(r.style.Padding)
	columns := []column{
		{header: "#", x: pad, rgb: [3]float64{0.85, 0.85, 0.9}},
		{header: "Player", x: pad + 30, rgb: [3]float64{1, 1, 1}},
		{header: "Score", x: pad + 200, rgb: [3]float64{0.85, 1, 0.85}},
		{header: "Solved", x: pad + 280, rgb: [3]float64{0.85, 0.85, 1}},
	}

	// title + header + rows + bottom padding
	height := 35 + 30 + max(len(entries), 1)*r.style.RowHeight + r.style.Padding
	height = max(height, r.style.MinHeight)

	dc := gg.NewContext(r.style.Width, height)
	drawBackground(dc, r.style.Width, height)

	titleFace, err := loadFont(gobold.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc.SetFontFace(titleFace)
	dc.SetRGB(0.35, 0.6, 1)
	drawSharpText(dc, r.title, pad, 22)

	dc.SetFontFace(face)
	y := 50.0
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(r.style.Width), 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.header, col.x, y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(r.style.Width), y+8)
	dc.Stroke()

	y += 30
	if len(entries) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		drawSharpText(dc, "No solves yet", columns[1].x, y)
	}

	for i, entry := range entries {
		drawRowBackground(dc, i, y, r.style.Width, r.style.RowHeight)

		if i < 3 {
			red, green, blue := medalColor(i)
			dc.SetRGB(red, green, blue)
			dc.DrawCircle(pad+4, y-4, 6)
			dc.Fill()
			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(titleFace)
			dc.DrawStringAnchored(fmt.Sprintf("%d", entry.Rank), pad+4, y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			dc.SetRGB(columns[0].rgb[0], columns[0].rgb[1], columns[0].rgb[2])
			drawSharpText(dc, fmt.Sprintf("%d", entry.Rank), columns[0].x, y)
		}

		cells := []string{
			"",
			truncate(displayName(entry), maxNameRunes),
			fmt.Sprintf("%d", entry.Score),
			fmt.Sprintf("%d", entry.SolvedCount),
		}
		for j := 1; j < len(columns); j++ {
			col := columns[j]
			dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
			drawSharpText(dc, cells[j], col.x, y)
		}

		y += float64(r.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func displayName(entry *models.LeaderboardEntry) string {
	if entry.Username != "" {
		return entry.Username
	}
	return entry.Name
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func medalColor(i int) (float64, float64, float64) {
	switch i {
	case 0:
		return 1, 0.84, 0
	case 1:
		return 0.75, 0.75, 0.75
	default:
		return 0.8, 0.5, 0.2
	}
}

func drawBackground(dc *gg.Context, width, height int) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(height))
	grad.AddColorStop(0, rgb(0.02, 0.02, 0.05))
	grad.AddColorStop(1, rgb(0.05, 0.07, 0.15))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()
}

func rgb(r, g, b float64) color.Color {
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func drawRowBackground(dc *gg.Context, i int, y float64, width, rowHeight int) {
	switch i {
	case 0:
		dc.SetRGBA(1, 0.84, 0, 0.1)
	case 1:
		dc.SetRGBA(0.8, 0.8, 0.8, 0.08)
	case 2:
		dc.SetRGBA(0.8, 0.5, 0.2, 0.06)
	default:
		dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
	}
	dc.DrawRectangle(0, y-15, float64(width), float64(rowHeight))
	dc.Fill()
}

func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	}), nil
}
