package db

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"adtest/internal/core/domain"
	"adtest/internal/core/port"
	"adtest/internal/preview"
)

// SeedName is the name of the demo test created by Seed.
const SeedName = "Demo Display Test"

var seedFormats = []struct {
	name          string
	width, height int
	fill          color.RGBA
	tracking      domain.Tracking
}{
	{"medium-rectangle.png", 300, 250, color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}, domain.Tracking{
		ClickURL:       "https://example.com/landing/1",
		ImpressionURL1: "https://example.com/pixel/1?imp=1",
	}},
	{"leaderboard.png", 728, 90, color.RGBA{R: 0x43, G: 0xa0, B: 0x47, A: 0xff}, domain.Tracking{
		ClickURL: "https://example.com/landing/2",
	}},
	{"skyscraper.png", 160, 600, color.RGBA{R: 0xfb, G: 0x8c, B: 0x00, A: 0xff}, domain.Tracking{}},
}

// Seed saves a demo test with one generated creative per common IAB size.
func Seed(ctx context.Context, tests port.TestUseCase) (*domain.GeneratedTest, error) {
	creatives := make([]domain.Creative, 0, len(seedFormats))
	for i, f := range seedFormats {
		img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: f.fill}, image.Point{}, draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.name, err)
		}
		creatives = append(creatives, domain.Creative{
			ID:         fmt.Sprintf("file-seed-%d", i+1),
			File:       domain.FileMeta{Name: f.name, Size: int64(buf.Len()), Type: "image/png"},
			Preview:    preview.DataURI("image/png", buf.Bytes()),
			Dimensions: &domain.Dimensions{Width: f.width, Height: f.height},
			Tracking:   f.tracking,
		})
	}

	return tests.Save(ctx, domain.TestDraft{
		TestMeta: domain.TestMeta{
			Name:      SeedName,
			Timestamp: time.Now().UnixMilli(),
			Author:    "seed",
		},
		Creatives: creatives,
	})
}
