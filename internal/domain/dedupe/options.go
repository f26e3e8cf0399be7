package dedupe

// Option configures the in-memory deduper.
type Option func(*submissionDeduper)

// WithMaxSize sets how many submission ids are remembered. Values <= 0 keep
// every id for the life of the process.
func WithMaxSize(maxSize int) Option {
	return func(d *submissionDeduper) {
		d.maxSize = maxSize
	}
}
