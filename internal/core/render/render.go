// Package render turns a display test into the HTML document used for manual
// QA of tracking pixels. The same template serves two variants that differ
// only in how image sources are referenced, see Mode.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"adtest/internal/core/domain"
)

// Mode selects how the generated document references creative images.
type Mode int

const (
	// Embedded references each creative through its preview, producing a
	// self-contained document.
	Embedded Mode = iota
	// Relative references each creative as images/<archive file name>. The
	// document is only valid next to the images folder of an archive.
	Relative
)

func (m Mode) String() string {
	switch m {
	case Embedded:
		return "embedded"
	case Relative:
		return "relative"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

const (
	// ImagesDir is the archive folder relative-mode sources point into.
	ImagesDir = "images"
	// FallbackExtension is used for creatives whose file name has no extension.
	FallbackExtension = "png"

	noneLabel        = "None"
	unknownSizeLabel = "Unknown size"
	autoDimension    = "auto"

	// bylineLayout mirrors the en-US locale rendering of date and time.
	bylineLayout = "1/2/2006, 3:04:05 PM"
	titleLayout  = "2006-01-02T15:04:05.000Z"
)

// The document text is an export contract: whitespace, including trailing
// spaces inside the img tag, is significant.
const documentTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Display Test – {{.Stamp}}</title>
  <style>
    body {
      font-family: Arial, sans-serif;
      display: flex;
      flex-wrap: wrap;
      gap: 24px;
      padding: 24px;
    }
    .ad {
      border: 1px solid #ddd;
      padding: 4px;
    }
    .ad-info {
      margin-top: 8px;
      font-size: 12px;
      color: #666;
    }
  </style>
  <script>
    window.onload = function() {
      document.querySelectorAll('img[data-imp1]').forEach(img => {
        ['imp1', 'imp2'].forEach(k => {
          const url = img.dataset[k];
          if(url) new Image().src = url;
        });
      });
    };
  </script>
</head>
<body>
  <h1>Display Test - {{.Name}}</h1>
  <p>Generated on {{.Generated}} by {{.Author}}</p>
  <div style="display: flex; flex-wrap: wrap; gap: 24px; margin-top: 24px;">
{{range .Blocks}}
    <div>
      <a href="{{.ClickURL}}" target="_blank" class="ad">
        <img 
          src="{{.Src}}" 
          alt="" 
          data-imp1="{{.Imp1}}" 
          data-imp2="{{.Imp2}}"
          width="{{.Width}}"
          height="{{.Height}}"
        />
      </a>
      <div class="ad-info">
        {{.SizeLabel}} • {{.KB}} KB
        <div>Click URL: {{.ClickLabel}}</div>
        <div>Imp 1: {{.Imp1Label}}</div>
        <div>Imp 2: {{.Imp2Label}}</div>
      </div>
    </div>
  {{end}}
  </div>
</body>
</html>
`

// text/template rather than html/template: URLs and data URIs are embedded
// verbatim, exactly as entered.
var document = template.Must(template.New("document").Parse(documentTemplate))

type documentData struct {
	Stamp     string
	Name      string
	Generated string
	Author    string
	Blocks    []creativeBlock
}

type creativeBlock struct {
	ClickURL   string
	Src        string
	Imp1       string
	Imp2       string
	Width      string
	Height     string
	SizeLabel  string
	KB         int64
	ClickLabel string
	Imp1Label  string
	Imp2Label  string
}

// Generator renders display test documents. It holds no state besides the
// location used for the human-readable timestamp, so a single value may be
// shared freely.
type Generator struct {
	loc *time.Location
}

// New returns a Generator formatting timestamps in loc. A nil loc means UTC.
func New(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc}
}

// Render produces the HTML document for meta and creatives in the given mode.
// Creatives are rendered in input order. Output is deterministic for
// identical inputs.
func (g *Generator) Render(meta domain.TestMeta, creatives []domain.Creative, mode Mode) (string, error) {
	if mode != Embedded && mode != Relative {
		return "", fmt.Errorf("render: unsupported %s", mode)
	}

	ts := meta.Time()
	data := documentData{
		Stamp:     strings.NewReplacer(":", "-", ".", "-").Replace(ts.Format(titleLayout)),
		Name:      meta.Name,
		Generated: ts.In(g.loc).Format(bylineLayout),
		Author:    meta.Author,
		Blocks:    make([]creativeBlock, len(creatives)),
	}
	for i, c := range creatives {
		data.Blocks[i] = newBlock(i+1, c, mode)
	}

	var b strings.Builder
	if err := document.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return b.String(), nil
}

func newBlock(position int, c domain.Creative, mode Mode) creativeBlock {
	block := creativeBlock{
		ClickURL:   c.ClickURL,
		Src:        c.Preview,
		Imp1:       c.ImpressionURL1,
		Imp2:       c.ImpressionURL2,
		Width:      autoDimension,
		Height:     autoDimension,
		SizeLabel:  unknownSizeLabel,
		KB:         c.File.SizeKB(),
		ClickLabel: orNone(c.ClickURL),
		Imp1Label:  orNone(c.ImpressionURL1),
		Imp2Label:  orNone(c.ImpressionURL2),
	}
	if mode == Relative {
		block.Src = ImagesDir + "/" + ArchiveFileName(position, c)
	}
	if d := c.Dimensions; d != nil {
		block.Width = strconv.Itoa(d.Width)
		block.Height = strconv.Itoa(d.Height)
		block.SizeLabel = fmt.Sprintf("%d×%d", d.Width, d.Height)
	}
	return block
}

func orNone(s string) string {
	if s == "" {
		return noneLabel
	}
	return s
}

// ArchiveFileName derives the collision-free archive entry name of a creative
// from its 1-based position: creative-<position>.<ext>. The extension keeps
// the case of the original file name.
func ArchiveFileName(position int, c domain.Creative) string {
	ext := c.File.Extension()
	if ext == "" {
		ext = FallbackExtension
	}
	return "creative-" + strconv.Itoa(position) + "." + ext
}

// whitespace covers ASCII spacing plus vertical tab, Unicode space separators
// (NBSP included), the line and paragraph separators and the BOM.
var whitespace = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// Slug lower-cases name and collapses every whitespace run to an underscore.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "_")
}

// HTMLFileName is the download name of a standalone test document.
func HTMLFileName(name string) string {
	return "test_" + Slug(name) + ".html"
}
