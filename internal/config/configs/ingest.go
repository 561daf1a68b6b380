package configs

// Ingest configures upload admission.
type Ingest struct {
	// MaxFileSize is the largest accepted creative, in bytes.
	MaxFileSize int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`
}
