// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps xtask.cue and syntax_kinds.cue at 1MB.
const DefaultMaxFileSize int64 = 1 << 20

type (
	decodeOptions struct {
		maxFileSize int64
		partial     bool
		filename    string
	}

	// Option configures Unify and ParseAndDecode.
	Option func(*decodeOptions)
)

func resolveOptions(opts []Option) decodeOptions {
	o := decodeOptions{maxFileSize: DefaultMaxFileSize, filename: "<input>"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxFileSize rejects documents larger than size bytes.
func WithMaxFileSize(size int64) Option {
	return func(o *decodeOptions) { o.maxFileSize = size }
}

// WithPartial accepts documents that leave schema fields unset. xtask.cue is
// partial: anything it omits keeps its built-in default.
func WithPartial() Option {
	return func(o *decodeOptions) { o.partial = true }
}

// WithFilename names the document in error messages.
func WithFilename(name string) Option {
	return func(o *decodeOptions) {
		if name != "" {
			o.filename = name
		}
	}
}
