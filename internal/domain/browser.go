package domain

import "strings"

// BrowserName enumerates the browsers the registration rules care about.
type BrowserName string

const (
	BrowserInternetExplorer BrowserName = "InternetExplorer"
	BrowserFirefox          BrowserName = "Firefox"
	BrowserChrome           BrowserName = "Chrome"
	BrowserSafari           BrowserName = "Safari"
	BrowserOpera            BrowserName = "Opera"
	BrowserUnknown          BrowserName = "Unknown"
)

var browserAliases = map[string]BrowserName{
	"ie":                BrowserInternetExplorer,
	"msie":              BrowserInternetExplorer,
	"internetexplorer":  BrowserInternetExplorer,
	"internet explorer": BrowserInternetExplorer,
	"firefox":           BrowserFirefox,
	"mozilla firefox":   BrowserFirefox,
	"chrome":            BrowserChrome,
	"google chrome":     BrowserChrome,
	"safari":            BrowserSafari,
	"opera":             BrowserOpera,
}

// ParseBrowserName maps a free-form browser name onto a BrowserName.
// Matching is case-insensitive; anything unrecognised is BrowserUnknown.
func ParseBrowserName(name string) BrowserName {
	if b, ok := browserAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return b
	}
	return BrowserUnknown
}

// WebBrowser is the browser a speaker submitted from.
type WebBrowser struct {
	Name         BrowserName `json:"name"`
	MajorVersion int         `json:"major_version"`
}

// NewWebBrowser parses name and pairs it with the major version.
func NewWebBrowser(name string, majorVersion int) WebBrowser {
	return WebBrowser{Name: ParseBrowserName(name), MajorVersion: majorVersion}
}

// IsInternetExplorer reports whether the browser is any Internet Explorer.
func (b WebBrowser) IsInternetExplorer() bool {
	return b.Name == BrowserInternetExplorer
}
