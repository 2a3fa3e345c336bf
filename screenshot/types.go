package screenshot

// Format selects the image encoding of a capture.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

const (
	// DefaultWidth and DefaultHeight are the viewport applied when none is
	// given.
	DefaultWidth  = 1280
	DefaultHeight = 720

	// MaxBatchURLs is the largest batch the API accepts in one request.
	MaxBatchURLs = 10
)

// Options are the rendering settings shared by single and batch captures.
// Out-of-range values are sent as-is and rejected by the API, which is the
// authority on all documented bounds.
type Options struct {
	// Width and Height set the viewport. Zero values fall back to 1280x720.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// FullPage captures the whole scroll height instead of the viewport.
	FullPage bool `json:"full_page,omitempty"`

	// Format defaults to PNG server-side. Quality (1-100) only applies to
	// the lossy formats.
	Format  Format `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`

	Mobile   bool `json:"mobile,omitempty"`
	DarkMode bool `json:"dark_mode,omitempty"`

	// DelayMS waits before capturing, up to 10000.
	DelayMS int `json:"delay,omitempty"`

	// Selector captures a single element instead of the page.
	Selector string `json:"selector,omitempty"`

	// CacheTTL asks the server to cache the rendered image, up to 3600
	// seconds. The client itself never caches.
	CacheTTL int `json:"cache_ttl,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	return o
}

// CaptureOptions describes a single screenshot request.
type CaptureOptions struct {
	URL string `json:"url"`
	Options
}

// CaptureResult is a rendered screenshot with its response metadata.
type CaptureResult struct {
	Data        []byte
	ContentType string
	Size        int
	DurationMS  int

	// Cached reports whether the server answered from its render cache.
	Cached bool
}

// BatchOptions describes a batch capture request. The API accepts at most
// MaxBatchURLs targets; Options applies to every URL.
type BatchOptions struct {
	URLs    []string `json:"urls"`
	Options Options  `json:"options"`
}

// BatchItemError is the failure detail of a single batch entry.
type BatchItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchItem is the per-URL outcome of a batch capture. Data arrives
// base64-encoded inside the JSON body and is decoded during unmarshaling.
type BatchItem struct {
	URL         string          `json:"url"`
	Success     bool            `json:"success"`
	Data        []byte          `json:"data,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
	Size        int             `json:"size,omitempty"`
	DurationMS  int             `json:"duration_ms,omitempty"`
	Error       *BatchItemError `json:"error,omitempty"`
}

// BatchSummary carries the server's aggregate counts for a batch.
type BatchSummary struct {
	Total      int `json:"total"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	DurationMS int `json:"duration_ms"`
}

// BatchResult is the decoded batch response, returned exactly as the server
// reported it.
type BatchResult struct {
	Results []BatchItem  `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// Quota is a used/limit pair for one accounting window.
type Quota struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Plan describes the subscription the API key belongs to.
type Plan struct {
	Name      string `json:"name"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

// UsageSnapshot is the current quota consumption for the API key.
type UsageSnapshot struct {
	Daily   Quota `json:"daily"`
	Monthly Quota `json:"monthly"`
	Plan    Plan  `json:"plan"`
}
