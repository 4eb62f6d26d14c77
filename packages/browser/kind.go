package browser

import (
	"fmt"
	"strings"
)

// Kind is a supported browser family.
type Kind string

const (
	KindChrome   Kind = "chrome"
	KindChromium Kind = "chromium"
	KindFirefox  Kind = "firefox"
	KindWebkit   Kind = "webkit"
)

// ParseKind normalizes a configured browser name. An empty name maps to
// chrome.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chrome":
		return KindChrome, nil
	case "chromium":
		return KindChromium, nil
	case "firefox":
		return KindFirefox, nil
	case "webkit":
		return KindWebkit, nil
	default:
		return "", fmt.Errorf("unsupported browser %q (supported: chrome, chromium, firefox, webkit)", s)
	}
}

// NeedsExplicitPath reports whether this kind has no discoverable default
// binary and must be pointed at a CDP-capable executable.
func (k Kind) NeedsExplicitPath() bool {
	return k == KindFirefox || k == KindWebkit
}
