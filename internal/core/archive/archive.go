// Package archive packages a saved display test as a ZIP file containing the
// relative-mode HTML document and the referenced creative images.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"adtest/internal/core/domain"
	"adtest/internal/core/port"
	"adtest/internal/core/render"
)

const (
	// IndexName is the archive's root document.
	IndexName = "index.html"
	// ContentType is the MIME type of produced archives.
	ContentType = "application/zip"
)

// Archive is a packaged test ready for download.
type Archive struct {
	FileName string
	Data     []byte
	// Entries lists the file entries in write order, directories excluded.
	Entries []string
}

// FileName is the download name of a packaged test.
func FileName(testName string) string {
	return "test_" + render.Slug(testName) + ".zip"
}

// Packager assembles archives. It fetches creative payloads through a
// port.Fetcher and renders the document with a render.Generator.
type Packager struct {
	fetcher port.Fetcher
	gen     *render.Generator
	logger  *slog.Logger
}

// NewPackager returns a Packager.
func NewPackager(fetcher port.Fetcher, gen *render.Generator, logger *slog.Logger) *Packager {
	return &Packager{fetcher: fetcher, gen: gen, logger: logger}
}

// Package builds the archive for test. All creative payloads are fetched
// concurrently; the first failure aborts packaging and is returned as a
// *domain.FetchError naming the creative. No partial archive is produced.
// test is not modified.
func (p *Packager) Package(ctx context.Context, test domain.GeneratedTest) (*Archive, error) {
	html, err := p.gen.Render(test.TestMeta, test.Creatives, render.Relative)
	if err != nil {
		return nil, err
	}

	payloads, err := p.fetchAll(ctx, test.Creatives)
	if err != nil {
		p.logger.WarnContext(ctx, "packaging aborted",
			slog.String("test_id", test.ID), slog.Any("error", err))
		return nil, err
	}

	modified := test.Time()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := make([]string, 0, len(test.Creatives)+1)

	if err = writeEntry(zw, IndexName, []byte(html), modified); err != nil {
		return nil, err
	}
	entries = append(entries, IndexName)

	if _, err = zw.CreateHeader(&zip.FileHeader{
		Name:     render.ImagesDir + "/",
		Method:   zip.Store,
		Modified: modified,
	}); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", render.ImagesDir, err)
	}

	for i, c := range test.Creatives {
		name := render.ImagesDir + "/" + render.ArchiveFileName(i+1, c)
		if err = writeEntry(zw, name, payloads[i], modified); err != nil {
			return nil, err
		}
		entries = append(entries, name)
	}

	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	p.logger.DebugContext(ctx, "test packaged",
		slog.String("test_id", test.ID),
		slog.Int("creatives", len(test.Creatives)),
		slog.Int("bytes", buf.Len()))

	return &Archive{
		FileName: FileName(test.Name),
		Data:     buf.Bytes(),
		Entries:  entries,
	}, nil
}

func (p *Packager) fetchAll(ctx context.Context, creatives []domain.Creative) ([][]byte, error) {
	payloads := make([][]byte, len(creatives))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range creatives {
		g.Go(func() error {
			data, err := p.fetcher.Fetch(gctx, c.Preview)
			if err != nil {
				return &domain.FetchError{
					CreativeID: c.ID,
					FileName:   c.File.Name,
					Position:   i + 1,
					Err:        err,
				}
			}
			payloads[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
