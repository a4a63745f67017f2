package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"jsvensson/matdeals/helpers"
	"jsvensson/matdeals/logger"
	"jsvensson/matdeals/services/cache"

	"github.com/go-resty/resty/v2"
)

// PublicationClient walks a catalog publication's pages directly against the
// publication API, which yields far more complete offer data than passive
// capture alone.
type PublicationClient struct {
	http      *resty.Client
	cache     cache.CacheService
	base      string
	maxPages  int
	blockTime time.Duration
	log       *logger.Logger
}

func NewPublicationClient(base string, maxPages int, blockTime time.Duration, c cache.CacheService) *PublicationClient {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	return &PublicationClient{
		http:      client,
		cache:     c,
		base:      base,
		maxPages:  maxPages,
		blockTime: blockTime,
		log:       logger.ForPublicationAPI(),
	}
}

// WalkPages fetches publication pages sequentially until the API stops
// returning offers or the page cap is hit. Offers are deduplicated by id and
// given images from the correlated image map. After a rate-limit response the
// publication is blocked for a while so later runs back off.
func (c *PublicationClient) WalkPages(store, publicationID string, images ImageMap) []OfferRecord {
	blockKey := "publication_block:" + publicationID
	if c.cache != nil {
		if _, err := c.cache.Get(blockKey); err == nil {
			c.log.Warn().Str("publication", publicationID).Msg("publication is rate-limit blocked, skipping walk")
			return nil
		}
	}

	seen := make(map[string]bool)
	var records []OfferRecord

	for page := 1; page <= c.maxPages; page++ {
		url := fmt.Sprintf("%s/%s/pages/%d", c.base, publicationID, page)

		resp, err := c.http.R().Get(url)
		if err != nil {
			c.log.Debug().Err(err).Int("page", page).Msg("page fetch failed, stopping walk")
			break
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			c.log.Warn().Str("publication", publicationID).Msg("publication API rate limited")
			if c.cache != nil {
				_ = c.cache.Set(blockKey, []byte("1"), c.blockTime)
			}
			break
		}
		if resp.StatusCode() != http.StatusOK {
			break
		}

		var body interface{}
		if err := decodeJSON(resp.Body(), &body); err != nil {
			break
		}

		offers := parseHotspotOffers(store, body)
		for _, o := range offers {
			if o.id != "" {
				if seen[o.id] {
					continue
				}
				seen[o.id] = true
			}
			rec := o.record
			if rec.Image == "" && o.id != "" {
				rec.Image = images[o.id]
			}
			records = append(records, rec)
		}
	}

	c.log.Info().Str("store", store).Int("offers", len(records)).Msg("publication walk finished")
	return records
}

var (
	pubPathPattern   = regexp.MustCompile(`paged-publications/([A-Za-z0-9_-]+)`)
	pubIDJSONPattern = regexp.MustCompile(`"publicationId"\s*:\s*"([^"]+)"`)
	pubQueryPattern  = regexp.MustCompile(`[?&]publication=([A-Za-z0-9_-]+)`)
)

// ResolvePublicationID finds the catalog publication id for a store listing.
// Captured request URLs are checked first, then the rendered markup, and as a
// last resort the listing page is refetched over plain HTTP.
func (c *PublicationClient) ResolvePublicationID(captured []CapturedResponse, html, listingURL string) string {
	for _, r := range captured {
		if id := publicationIDFromURL(r.URL); id != "" {
			return id
		}
	}

	if id := publicationIDFromHTML(html); id != "" {
		return id
	}

	if listingURL != "" {
		if body, err := helpers.FetchWithRandomHeaders(listingURL); err == nil {
			if data, err := io.ReadAll(body); err == nil {
				if id := publicationIDFromHTML(string(data)); id != "" {
					return id
				}
			}
		}
	}
	return ""
}

func publicationIDFromURL(url string) string {
	idx := strings.Index(url, "paged-publications")
	if idx < 0 {
		return ""
	}
	rest := url[idx+len("paged-publications"):]
	rest = strings.SplitN(rest, "?", 2)[0]
	id, err := helpers.GetSplitPart(rest, "/", 1)
	if err != nil || id == "" || id == "pages" {
		return ""
	}
	return id
}

func decodeJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func publicationIDFromHTML(html string) string {
	for _, p := range []*regexp.Regexp{pubPathPattern, pubIDJSONPattern, pubQueryPattern} {
		if m := p.FindStringSubmatch(html); m != nil {
			return m[1]
		}
	}
	return ""
}
