// Package ingest turns admitted raw uploads into creative records.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"adtest/internal/core/domain"
	"adtest/internal/preview"
)

// RawFile is an uploaded file as received from the caller.
type RawFile struct {
	Name string
	Type string
	Data []byte
}

// ProbeFunc reports the pixel dimensions of an encoded image.
type ProbeFunc func(data []byte) (domain.Dimensions, error)

// Result pairs an ingested creative with the preview handle it owns.
type Result struct {
	Creative domain.Creative
	Preview  *preview.Handle
}

// Ingester builds creative records from raw files.
type Ingester struct {
	previews *preview.Registry
	probe    ProbeFunc
	logger   *slog.Logger
}

// Option customises an Ingester.
type Option func(*Ingester)

// WithProbe replaces the image dimension probe.
func WithProbe(p ProbeFunc) Option {
	return func(in *Ingester) {
		if p != nil {
			in.probe = p
		}
	}
}

// New returns an Ingester acquiring previews from previews.
func New(previews *preview.Registry, logger *slog.Logger, opts ...Option) *Ingester {
	in := &Ingester{previews: previews, probe: ProbeImage, logger: logger}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest produces one result per file, in input order. Every file is probed
// concurrently and resolves independently: a failed decode yields a creative
// without dimensions and never affects its siblings. Ingest returns once all
// files have resolved.
func (in *Ingester) Ingest(ctx context.Context, files []RawFile) []Result {
	results := make([]Result, len(files))

	// ingestOne never fails; decode errors are reported on the Result.
	var g errgroup.Group
	for i := range files {
		g.Go(func() error {
			results[i] = in.ingestOne(ctx, files[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (in *Ingester) ingestOne(ctx context.Context, f RawFile) Result {
	h := in.previews.Acquire(f.Type, f.Data)
	c := domain.Creative{
		ID: NewCreativeID(),
		File: domain.FileMeta{
			Name: f.Name,
			Size: int64(len(f.Data)),
			Type: f.Type,
		},
		Preview: h.URI(),
	}

	dims, err := in.safeProbe(f.Data)
	if err != nil {
		in.logger.DebugContext(ctx, "creative left undimensioned",
			slog.String("file", f.Name), slog.Any("error", err))
	} else {
		c.Dimensions = &dims
	}

	return Result{Creative: c, Preview: h}
}

func (in *Ingester) safeProbe(data []byte) (dims domain.Dimensions, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrDecodeFailure, r)
		}
	}()
	return in.probe(data)
}

// ProbeImage decodes the image header of a JPEG, PNG, GIF or WebP payload.
func ProbeImage(data []byte) (domain.Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Dimensions{}, fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return domain.Dimensions{}, fmt.Errorf("%w: empty image", domain.ErrDecodeFailure)
	}
	return domain.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// NewCreativeID returns a time-ordered random identifier for a creative.
func NewCreativeID() string {
	return "file-" + uuid.Must(uuid.NewV7()).String()
}

// Creatives extracts the creative records from results.
func Creatives(results []Result) []domain.Creative {
	out := make([]domain.Creative, len(results))
	for i, r := range results {
		out[i] = r.Creative
	}
	return out
}

// Handles extracts the preview handles from results.
func Handles(results []Result) []*preview.Handle {
	out := make([]*preview.Handle, len(results))
	for i, r := range results {
		out[i] = r.Preview
	}
	return out
}
