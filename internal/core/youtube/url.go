package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the 11-character video id out of the URL forms
// YouTube hands out: youtu.be short links, watch?v=, and path-based ids
// (shorts, embed, live, v). A bare id is accepted as-is.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	if i := strings.Index(raw, "youtu.be/"); i >= 0 {
		id := raw[i+len("youtu.be/"):]
		if j := strings.IndexAny(id, "?&/"); j >= 0 {
			id = id[:j]
		}
		if id != "" {
			return id, nil
		}
	}

	parsed, err := url.Parse(raw)
	if err == nil {
		if v := parsed.Query().Get("v"); v != "" {
			return v, nil
		}

		segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
		for i, seg := range segments {
			switch seg {
			case "shorts", "embed", "live", "v":
				if i+1 < len(segments) {
					return segments[i+1], nil
				}
			}
		}
	}

	if m := idPattern.FindStringSubmatch(raw); len(m) == 2 {
		return m[1], nil
	}

	// A plain video id pasted without a URL.
	if len(raw) == 11 && !strings.ContainsAny(raw, "./:?&") {
		return raw, nil
	}

	return "", fmt.Errorf("could not extract video id from %q", raw)
}
