package domain

import "time"

// TestMeta is the descriptive part of a display test: everything the HTML
// generator needs besides the creatives themselves.
type TestMeta struct {
	Name string `json:"name" yaml:"name"`
	// Timestamp is the creation instant in Unix milliseconds.
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Author    string `json:"author" yaml:"author"`
}

// Time converts Timestamp into a time.Time in UTC.
func (m TestMeta) Time() time.Time {
	return time.UnixMilli(m.Timestamp).UTC()
}

// TestDraft is the input to the test store's save operation.
type TestDraft struct {
	TestMeta
	Creatives []Creative
}

// GeneratedTest is an immutable, saved display test. CreativeCount always
// equals len(Creatives) and PreviewURL is a data URI of the embedded-mode
// HTML rendered at save time.
type GeneratedTest struct {
	ID            string `json:"id" yaml:"id"`
	TestMeta      `yaml:",inline"`
	CreativeCount int        `json:"creativeCount" yaml:"creativeCount"`
	PreviewURL    string     `json:"previewUrl" yaml:"-"`
	Creatives     []Creative `json:"creatives" yaml:"creatives"`
}

// Draft is the mutable working set a user authors before saving a test.
type Draft struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
	Creatives []Creative `json:"creatives"`
}
