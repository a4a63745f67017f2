package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ImageMap maps offer ids to product image URLs scraped off a listing page.
type ImageMap map[string]string

var offerHrefPattern = regexp.MustCompile(`offer_view=([A-Za-z0-9_-]+)`)

// CollectOfferImages scrolls through a store's listing page and correlates
// offer ids with the product images rendered next to them. The publication
// API serves offers without images, so this map fills them in.
func (s *Session) CollectOfferImages(listingURL string) ImageMap {
	if err := s.Navigate(listingURL); err != nil {
		s.log.Debug().Err(err).Msg("image collection navigation failed")
		return nil
	}
	s.ScrollToBottom(s.cfg.InventoryScrollStepPx, s.cfg.ScrollStepDelay, s.cfg.MaxInventoryScrollSteps)
	s.Settle()

	html, err := s.HTML()
	if err != nil {
		s.log.Debug().Err(err).Msg("image collection read failed")
		return nil
	}
	return parseOfferImages(html)
}

// parseOfferImages pulls offer ids out of offer_view anchors and pairs each
// with the first real image inside the anchor.
func parseOfferImages(html string) ImageMap {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	images := make(ImageMap)
	doc.Find(`a[href*="offer_view="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := offerHrefPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]
		if _, ok := images[id]; ok {
			return
		}

		a.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, _ := img.Attr("src")
			if src == "" {
				src, _ = img.Attr("data-src")
			}
			if strings.HasPrefix(src, "http") {
				images[id] = src
				return false
			}
			return true
		})
	})
	return images
}
