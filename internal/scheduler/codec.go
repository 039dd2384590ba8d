package scheduler

import "github.com/cyw0ng95/schedproxy/pkg/jsonutil"

// jsonMarshalFunc and jsonUnmarshalFunc let resty clients use the same
// build-tag-selected codec (encoding/json or sonic) as the rest of the wire
// layer instead of resty's own encoding/json default.
var (
	jsonMarshalFunc   = jsonutil.Marshal
	jsonUnmarshalFunc = jsonutil.Unmarshal
)
