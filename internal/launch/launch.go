// Package launch extracts the console's invocation parameters from the
// hosting page's query string.
package launch

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query keys understood by the console.
const (
	KeyODURL             = "rpAodUrl"
	KeySeek              = "t"
	KeyStationListPrefix = "stationlistprefix"
)

// Parameters is the snapshot of launch-time parameters. Zero values mean the
// parameter was absent or unusable.
type Parameters struct {
	ODURL             string        // on-demand audio URL override
	Seek              time.Duration // start offset for on-demand audio
	StationListPrefix string        // lowercased station list prefix
}

// HasODOverride reports whether an on-demand URL override was supplied.
func (p Parameters) HasODOverride() bool {
	return p.ODURL != ""
}

// FromPageURL parses the query part of a full page URL.
// An unparsable page URL yields empty parameters.
func FromPageURL(pageURL string) Parameters {
	if pageURL == "" {
		return Parameters{}
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return Parameters{}
	}
	return Parse(u.RawQuery)
}

// Parse parses a raw query string (with or without the leading '?').
func Parse(rawQuery string) Parameters {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	values, err := url.ParseQuery(rawQuery)
	if err != nil && len(values) == 0 {
		return Parameters{}
	}

	return Parameters{
		ODURL:             normalizeODURL(values.Get(KeyODURL)),
		Seek:              ParseTimestamp(values.Get(KeySeek)),
		StationListPrefix: strings.ToLower(strings.TrimSpace(values.Get(KeyStationListPrefix))),
	}
}

// normalizeODURL keeps only absolute http(s) URLs.
func normalizeODURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return ""
	}
}

// ParseTimestamp converts a timestamp into a duration with whole-second
// precision. Accepted forms: "hh:mm:ss", "mm:ss", "90", "1h2m3s", "90s".
// Anything else, including negative values, yields 0.
func ParseTimestamp(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return time.Duration(n) * time.Second
	}

	d, err := time.ParseDuration(strings.ToLower(s))
	if err != nil || d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

func parseClock(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}

	var total int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		// Minutes and seconds fields past the leading one must stay below 60.
		if i > 0 && n >= 60 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
