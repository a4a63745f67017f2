package scraper

import (
	"strings"
)

// Coop's member-offer API returns structured promotions with separate brand,
// pricing and image fields.

// ParseCoopOffers extracts offers from a captured Coop API body.
func ParseCoopOffers(store string, body interface{}) []OfferRecord {
	items := coopOfferList(body)

	var records []OfferRecord
	for _, item := range items {
		offer, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		// Product fields sit under a content envelope; some endpoints flatten
		// them onto the offer itself.
		content, ok := offer["content"].(map[string]interface{})
		if !ok {
			content = offer
		}

		title, _ := content["title"].(string)
		if title == "" {
			title, _ = content["name"].(string)
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		rec := OfferRecord{Store: store, Name: title}

		// Brand is appended unless the title already names it.
		if brand, ok := content["brand"].(string); ok && brand != "" {
			if !strings.Contains(strings.ToLower(title), strings.ToLower(brand)) {
				rec.Name = title + " (" + brand + ")"
			}
		}

		rec.Price = coopPrice(offer)
		rec.Description, _ = content["description"].(string)
		rec.Image = coopImage(content)

		records = append(records, rec)
	}
	return records
}

func coopPrice(offer map[string]interface{}) string {
	pi, ok := offer["priceInformation"].(map[string]interface{})
	if !ok {
		pi = offer
	}

	price := formatNumber(pi["discountValue"])
	if price == "" {
		price = formatNumber(pi["price"])
	}
	if price == "" {
		return ""
	}

	// Multi-buy promotions phrase the price as "N för X:-".
	if min, ok := pi["minimumAmount"].(float64); ok && min > 1 {
		return formatNumber(min) + " för " + price + ":-"
	}
	return price + ":-"
}

func coopImage(offer map[string]interface{}) string {
	img, _ := offer["image"].(string)
	if img == "" {
		if obj, ok := offer["image"].(map[string]interface{}); ok {
			img = urlFromImageObject(obj)
		}
	}
	if img == "" {
		img, _ = offer["imageUrl"].(string)
	}
	if strings.HasPrefix(img, "//") {
		img = "https:" + img
	}
	return img
}

// coopOfferList finds the promotion array whichever envelope the endpoint
// used.
func coopOfferList(body interface{}) []interface{} {
	switch v := body.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		for _, key := range []string{"offers", "results", "items", "promotions"} {
			if list, ok := v[key].([]interface{}); ok {
				return list
			}
		}
	}
	return nil
}
