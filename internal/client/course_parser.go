package client

import (
	"fmt"
	"net/url"
	"strings"

	"wattle/downloader/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const (
	activitySelector = ".activity-item"
	detailsSelector  = ".resourcelinkdetails"
	linkSelector     = ".aalink.stretched-link"
)

type courseParser struct {
	pageURL *url.URL
}

func newCourseParser(pageURL string) *courseParser {
	base, err := url.Parse(pageURL)
	if err != nil {
		log.Warnf("Course page URL %q is not parseable, links stay relative: %v", pageURL, err)
		base = nil
	}
	return &courseParser{
		pageURL: base,
	}
}

// ParseItems extracts every activity item in document order
func (p *courseParser) ParseItems(html string) ([]domain.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := make([]domain.Item, 0)
	doc.Find(activitySelector).Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("data-activityname")

		item := domain.Item{
			Name:    name,
			Details: strings.TrimSpace(s.Find(detailsSelector).First().Text()),
		}

		link := s.Find(linkSelector).First()
		if link.Length() > 0 {
			item.HasLink = true
			href, _ := link.Attr("href")
			item.Href = p.absolute(href)
			item.OnClick, _ = link.Attr("onclick")
		}

		items = append(items, item)
	})

	log.Debugf("Extracted %d activity items from page", len(items))
	return items, nil
}

func (p *courseParser) absolute(href string) string {
	if href == "" || p.pageURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.pageURL.ResolveReference(ref).String()
}
