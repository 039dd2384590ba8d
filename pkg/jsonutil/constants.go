package jsonutil

const (
	// DefaultJSONIndent is the indent unit used by MarshalIndent callers
	// that don't specify their own (e.g. debug dumps).
	DefaultJSONIndent = "  "
	// DefaultJSONPrefix is the line prefix used alongside DefaultJSONIndent.
	DefaultJSONPrefix = ""

	// MaxJSONSize caps the size of a document Unmarshal will accept, as a
	// second line of defense alongside the scheduler's own body-size cap.
	MaxJSONSize = 10 * 1024 * 1024 // 10MB
)
