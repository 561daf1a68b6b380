package domain

import (
	"math"
	"strings"
)

// FileMeta describes the original uploaded binary of a creative. Size is the
// byte length and Type the MIME type reported at upload.
type FileMeta struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
	Type string `json:"type" yaml:"type"`
}

// Extension returns the substring after the last dot of the file name, with
// its case preserved. It returns an empty string when the name has no dot or
// ends with one.
func (f FileMeta) Extension() string {
	i := strings.LastIndex(f.Name, ".")
	if i < 0 {
		return ""
	}
	return f.Name[i+1:]
}

// SizeKB returns the file size in kilobytes, rounded half away from zero.
func (f FileMeta) SizeKB() int64 {
	return int64(math.Round(float64(f.Size) / 1024))
}

// Dimensions holds the pixel size of a decoded creative. A creative either
// carries both values or none, so the pair is modelled as one optional value.
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Tracking groups the three tracking slots of a creative. Empty strings mean
// unset; values are never validated here.
type Tracking struct {
	ClickURL       string `json:"clickUrl" yaml:"clickUrl"`
	ImpressionURL1 string `json:"impressionUrl1" yaml:"impressionUrl1"`
	ImpressionURL2 string `json:"impressionUrl2" yaml:"impressionUrl2"`
}

// Creative is one uploaded ad image plus its tracking metadata. Preview is a
// renderable reference to the image bytes (a data URI once ingested).
type Creative struct {
	ID         string      `json:"id" yaml:"id"`
	File       FileMeta    `json:"file" yaml:"file"`
	Preview    string      `json:"preview" yaml:"-"`
	Dimensions *Dimensions `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Tracking   `yaml:",inline"`
}

// HasDimensions reports whether the creative was successfully decoded.
func (c Creative) HasDimensions() bool {
	return c.Dimensions != nil
}

// Clone returns a deep copy that shares no mutable state with c.
func (c Creative) Clone() Creative {
	if c.Dimensions != nil {
		d := *c.Dimensions
		c.Dimensions = &d
	}
	return c
}

// CloneCreatives deep-copies a creative list preserving order.
func CloneCreatives(src []Creative) []Creative {
	if src == nil {
		return nil
	}
	out := make([]Creative, len(src))
	for i, c := range src {
		out[i] = c.Clone()
	}
	return out
}
