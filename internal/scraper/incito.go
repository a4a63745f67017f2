package scraper

import (
	"regexp"
	"sort"
	"strings"
)

// Incito documents are deeply nested view trees. Offers appear as subtrees
// with role "offer"; their text leaves carry name, price, unit and comparison
// prices as free-form strings that the patterns below pick apart.

const maxTreeDepth = 30

// Catalog product images are served through the tjek image transformer; other
// image URLs in an offer subtree are page furniture.
const imageHostMarker = "image-transformer"

var (
	paginationPattern = regexp.MustCompile(`^\d+\s*/\s*\d+$`)
	pricePattern      = regexp.MustCompile(`^\d+:-$`)
	multibuyPattern   = regexp.MustCompile(`^\d+\s+för$`)
	ordPrisPattern    = regexp.MustCompile(`Ord\.pris\s+([\d:,.-]+)\s*kr`)
	jfrPrisPattern    = regexp.MustCompile(`Jfr pris\s+([\d:,.-]+)`)
)

var unitSuffixes = []string{"/kg", "/st", "/liter"}

type offerNode struct {
	texts []string
	image string
}

// ParseIncito extracts offers from a captured incito document body.
func ParseIncito(store string, body interface{}) []OfferRecord {
	var offers []offerNode
	findOffers(body, 0, &offers)

	records := make([]OfferRecord, 0, len(offers))
	for _, o := range offers {
		rec, ok := parseOfferTexts(store, o.texts)
		if !ok {
			continue
		}
		rec.Image = o.image
		records = append(records, rec)
	}
	return records
}

// findOffers walks the view tree collecting role=="offer" subtrees. The depth
// cap guards against pathological nesting in captured documents.
func findOffers(node interface{}, depth int, out *[]offerNode) {
	if depth > maxTreeDepth {
		return
	}

	m, ok := node.(map[string]interface{})
	if !ok {
		if list, ok := node.([]interface{}); ok {
			for _, item := range list {
				findOffers(item, depth+1, out)
			}
		}
		return
	}

	if role, _ := m["role"].(string); role == "offer" {
		var texts []string
		collectTexts(m, depth, &texts)
		*out = append(*out, offerNode{
			texts: texts,
			image: findOfferImage(m, depth),
		})
		return
	}

	for _, key := range childKeys(m) {
		findOffers(m[key], depth+1, out)
	}
}

// childKeys orders a node's traversal: the conventional child containers
// first, then every remaining key sorted for determinism. The root_view key
// is revisited in the second pass, which is harmless since offer subtrees are
// deduplicated downstream by store and name.
func childKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for _, k := range []string{"child_views", "children", "root_view"} {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}

	var rest []string
	for k := range m {
		if k == "child_views" || k == "children" {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// collectTexts gathers the "text" leaves of an offer subtree in document
// order.
func collectTexts(node interface{}, depth int, out *[]string) {
	if depth > maxTreeDepth {
		return
	}

	switch v := node.(type) {
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok && strings.TrimSpace(text) != "" {
			*out = append(*out, strings.TrimSpace(text))
		}
		for _, key := range childKeys(v) {
			if key == "text" {
				continue
			}
			collectTexts(v[key], depth+1, out)
		}
	case []interface{}:
		for _, item := range v {
			collectTexts(item, depth+1, out)
		}
	}
}

// findOfferImage locates the first catalog product image in an offer subtree.
// URLs without the transformer host are layout placeholders and rejected.
func findOfferImage(node interface{}, depth int) string {
	if depth > maxTreeDepth {
		return ""
	}

	switch v := node.(type) {
	case map[string]interface{}:
		if src, ok := v["src"].(string); ok && isCatalogImage(src) {
			return src
		}
		if src, ok := v["image_url"].(string); ok && isCatalogImage(src) {
			return src
		}
		for _, key := range childKeys(v) {
			if img := findOfferImage(v[key], depth+1); img != "" {
				return img
			}
		}
	case []interface{}:
		for _, item := range v {
			if img := findOfferImage(item, depth+1); img != "" {
				return img
			}
		}
	}
	return ""
}

func isCatalogImage(url string) bool {
	return strings.Contains(url, imageHostMarker)
}

// parseOfferTexts turns an offer's text leaves into an OfferRecord. The first
// text is the name (the second when the first is a pagination marker); a name
// shorter than 2 characters discards the offer. The remaining texts are
// classified: price-shaped strings become the price, unit tokens and
// quantity-for-price phrasings the unit, both with the last match winning,
// and annotation texts carrying pipe separators or reference-price labels are
// joined into the description with ord/jfr values extracted.
func parseOfferTexts(store string, texts []string) (OfferRecord, bool) {
	idx := 0
	if idx < len(texts) && paginationPattern.MatchString(texts[idx]) {
		idx++
	}
	if idx >= len(texts) {
		return OfferRecord{}, false
	}
	name := texts[idx]
	if len([]rune(name)) < 2 {
		return OfferRecord{}, false
	}

	rec := OfferRecord{Store: store, Name: name}
	var descParts []string

	for _, text := range texts[idx+1:] {
		if m := ordPrisPattern.FindStringSubmatch(text); m != nil {
			rec.OrdPris = m[1]
		}
		if m := jfrPrisPattern.FindStringSubmatch(text); m != nil {
			rec.JfrPris = m[1]
		}

		switch {
		case pricePattern.MatchString(text):
			rec.Price = text
		case isUnitSuffix(text) || multibuyPattern.MatchString(text):
			rec.Unit = text
		case strings.Contains(text, "|") || strings.Contains(text, "Ord.pris") || strings.Contains(text, "Jfr pris"):
			descParts = append(descParts, text)
		}
	}

	if len(descParts) > 0 {
		rec.Description = strings.Join(descParts, " | ")
	}
	return rec, true
}

func isUnitSuffix(text string) bool {
	for _, u := range unitSuffixes {
		if text == u {
			return true
		}
	}
	return false
}
