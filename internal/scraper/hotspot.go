package scraper

import (
	"strconv"
	"strings"
)

// Paged-publication responses list offers as "hotspots": flat objects with a
// heading, pricing block and loosely typed image fields.

type hotspotOffer struct {
	id     string
	record OfferRecord
}

// ParseHotspots extracts offers from a captured paged-publications body.
func ParseHotspots(store string, body interface{}) []OfferRecord {
	offers := parseHotspotOffers(store, body)
	records := make([]OfferRecord, 0, len(offers))
	for _, o := range offers {
		records = append(records, o.record)
	}
	return records
}

// parseHotspotOffers keeps offer ids alongside records so the publication
// walker can deduplicate across pages and attach correlated images.
func parseHotspotOffers(store string, body interface{}) []hotspotOffer {
	items := hotspotList(body)

	var offers []hotspotOffer
	for _, item := range items {
		hs, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		offer, ok := hs["offer"].(map[string]interface{})
		if !ok {
			offer = hs
		}

		heading, _ := offer["heading"].(string)
		heading = strings.TrimSpace(heading)
		if heading == "" {
			continue
		}

		rec := OfferRecord{Store: store, Name: heading}

		if pricing, ok := offer["pricing"].(map[string]interface{}); ok {
			if price, ok := pricing["price"]; ok {
				if p := formatNumber(price); p != "" {
					rec.Price = p + ":-"
				}
			}
			if pre, ok := pricing["pre_price"]; ok {
				if p := formatNumber(pre); p != "" {
					rec.Description = "Ord.pris " + p + ":-"
				}
			}
		}

		if quantity, ok := offer["quantity"].(map[string]interface{}); ok {
			if unit, ok := quantity["unit"].(map[string]interface{}); ok {
				if symbol, ok := unit["symbol"].(string); ok && symbol != "" {
					rec.Unit = symbol
				}
			}
		}

		rec.Image = hotspotImage(offer)

		id, _ := offer["id"].(string)
		if id == "" {
			id, _ = hs["id"].(string)
		}

		offers = append(offers, hotspotOffer{id: id, record: rec})
	}
	return offers
}

// hotspotList finds the offer array in the varying response envelopes the
// publication API serves.
func hotspotList(body interface{}) []interface{} {
	switch v := body.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		for _, key := range []string{"hotspots", "offers", "results", "items"} {
			if list, ok := v[key].([]interface{}); ok {
				return list
			}
		}
	}
	return nil
}

func hotspotImage(offer map[string]interface{}) string {
	if img := (imageValue{raw: offer["image"]}).URL(); img != "" {
		return img
	}
	return (imageValue{raw: offer["images"]}).URL()
}

// imageValue normalizes the image field's shapes: a plain URL string, a list
// of URLs or image objects, or a single image object.
type imageValue struct {
	raw interface{}
}

func (v imageValue) URL() string {
	switch img := v.raw.(type) {
	case string:
		return img
	case []interface{}:
		for _, item := range img {
			switch entry := item.(type) {
			case string:
				if entry != "" {
					return entry
				}
			case map[string]interface{}:
				if url := urlFromImageObject(entry); url != "" {
					return url
				}
			}
		}
	case map[string]interface{}:
		return urlFromImageObject(img)
	}
	return ""
}

func urlFromImageObject(obj map[string]interface{}) string {
	for _, key := range []string{"url", "src", "view", "zoom", "thumb"} {
		if url, ok := obj[key].(string); ok && url != "" {
			return url
		}
	}
	return ""
}

// formatNumber renders JSON numbers without a trailing ".0" so whole-krona
// prices print as "59", while passing strings through untouched.
func formatNumber(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	}
	return ""
}
