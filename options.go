package civ6save

type readConfig struct {
	limits    Limits
	strictIDs bool
	inflate   bool
}

type ReadOption func(*readConfig)

// WithLimits sets custom decoding limits. Zero fields fall back to defaults.
func WithLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithStrictSectionIdentifiers promotes the soft Unidentified1 identifier
// check to a fatal ErrConstantMismatch. Off by default, since the constant's
// meaning is unconfirmed.
func WithStrictSectionIdentifiers(v bool) ReadOption {
	return func(c *readConfig) { c.strictIDs = v }
}

// WithoutInflate skips decompression of the game-state section and of
// compressed blob entries; their chunk framing is still read and stored, so
// the document round-trips unchanged. Useful for metadata-only scans.
func WithoutInflate() ReadOption {
	return func(c *readConfig) { c.inflate = false }
}

type writeConfig struct {
	limits Limits
}

type WriteOption func(*writeConfig)

// WithWriteLimits sets the limits used to validate a document before
// encoding. Zero fields fall back to defaults.
func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}
