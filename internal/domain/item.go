package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ErrNoDownloadLink is reported for items that carry no download anchor.
var ErrNoDownloadLink = errors.New("No download link found")

var (
	windowOpenRegex   = regexp.MustCompile(`window\.open\('([^']+)'`)
	unsafeFilenameRgx = regexp.MustCompile(`[/\\?%*:|"<>]`)
)

// Item is one candidate document listed on the course page
type Item struct {
	Ordinal int    `json:"ordinal"` // 1-based position in the filtered sequence
	Name    string `json:"name"`    // data-activityname
	Details string `json:"details"` // resource link details, e.g. "PDF document"
	HasLink bool   `json:"has_link"`
	Href    string `json:"href,omitempty"`    // absolute link target
	OnClick string `json:"onclick,omitempty"` // raw onclick attribute of the link
}

// ResolveURL returns the URL to download the item from. A window.open target in
// the onclick handler wins over the plain href. The redirect query parameter is
// always forced to 1.
func (i Item) ResolveURL() (*url.URL, error) {
	if !i.HasLink {
		return nil, ErrNoDownloadLink
	}

	raw := i.Href
	if matches := windowOpenRegex.FindStringSubmatch(i.OnClick); len(matches) > 1 {
		raw = matches[1]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: not absolute", raw)
	}

	query := u.Query()
	query.Set("redirect", "1")
	u.RawQuery = query.Encode()

	return u, nil
}

// SuggestedFilename is the item name with path-hostile characters replaced by
// "-" and a .pdf suffix
func (i Item) SuggestedFilename() string {
	return unsafeFilenameRgx.ReplaceAllString(i.Name, "-") + ".pdf"
}
