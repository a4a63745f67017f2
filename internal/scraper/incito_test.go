package scraper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incitoBody(t *testing.T, raw string) interface{} {
	t.Helper()
	var body interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestParseIncitoBasicOffer(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{
				"role": "offer",
				"child_views": [
					{"text": "3 / 10"},
					{"text": "Kycklingfilé"},
					{"text": "59:-"},
					{"text": "/kg"}
				]
			}
		]
	}`)

	records := ParseIncito("ICA Supermarket", body)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ICA Supermarket", rec.Store)
	assert.Equal(t, "Kycklingfilé", rec.Name)
	assert.Equal(t, "59:-", rec.Price)
	assert.Equal(t, "/kg", rec.Unit)
}

func TestParseIncitoOrdAndJfrPris(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{
				"role": "offer",
				"children": [
					{"text": "Laxfilé"},
					{"text": "99:-"},
					{"text": "Ord.pris 149:- kr"},
					{"text": "Jfr pris 99,00 kr/kg"}
				]
			}
		]
	}`)

	records := ParseIncito("Willys", body)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Laxfilé", rec.Name)
	assert.Equal(t, "99:-", rec.Price)
	assert.Equal(t, "149:-", rec.OrdPris)
	assert.Equal(t, "99,00", rec.JfrPris)
	assert.Equal(t, "Ord.pris 149:- kr | Jfr pris 99,00 kr/kg", rec.Description)
}

func TestParseOfferTextsNameIsPositional(t *testing.T) {
	// A too-short first text discards the offer outright; later texts are
	// never promoted to name in its place.
	_, ok := parseOfferTexts("Coop", []string{"x", "Bananer", "19:-"})
	assert.False(t, ok)

	// A price-shaped first text is still the name.
	rec, ok := parseOfferTexts("Coop", []string{"59:-", "Kyckling"})
	require.True(t, ok)
	assert.Equal(t, "59:-", rec.Name)
	assert.Empty(t, rec.Price)
}

func TestParseOfferTextsLastMatchWins(t *testing.T) {
	rec, ok := parseOfferTexts("Coop", []string{"Kaffe", "39:-", "49:-", "/st", "/kg"})
	require.True(t, ok)
	assert.Equal(t, "49:-", rec.Price)
	assert.Equal(t, "/kg", rec.Unit)
}

func TestParseOfferTextsDescriptionBySubstring(t *testing.T) {
	// Reference-price texts join the description even when their numbers do
	// not parse; extraction of ord/jfr values is independent of membership.
	rec, ok := parseOfferTexts("Coop", []string{"Laxfilé", "Ord.pris utgår", "Storpack | fryst"})
	require.True(t, ok)
	assert.Equal(t, "Ord.pris utgår | Storpack | fryst", rec.Description)
	assert.Empty(t, rec.OrdPris)
}

func TestParseIncitoMultibuyUnit(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{
				"role": "offer",
				"child_views": [
					{"text": "Ost Präst"},
					{"text": "2 för"},
					{"text": "45:-"}
				]
			}
		]
	}`)

	records := ParseIncito("Coop", body)
	require.Len(t, records, 1)
	assert.Equal(t, "Ost Präst", records[0].Name)
	assert.Equal(t, "2 för", records[0].Unit)
	assert.Equal(t, "45:-", records[0].Price)
}

func TestParseIncitoRejectsShortNames(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{"role": "offer", "child_views": [{"text": "X"}, {"text": "59:-"}]}
		]
	}`)

	assert.Empty(t, ParseIncito("Coop", body))
}

func TestParseIncitoImageSelection(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{
				"role": "offer",
				"child_views": [
					{"text": "Kaffe Mellanrost"},
					{"text": "49:-"},
					{"src": "https://cdn.example.se/layout/placeholder.png"},
					{"src": "https://image-transformer.tjek.com/abc/large.jpg"}
				]
			}
		]
	}`)

	records := ParseIncito("ICA Nära", body)
	require.Len(t, records, 1)
	assert.Equal(t, "https://image-transformer.tjek.com/abc/large.jpg", records[0].Image)
}

func TestParseIncitoPlaceholderImageRejected(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{
				"role": "offer",
				"child_views": [
					{"text": "Bananer"},
					{"text": "19:-"},
					{"src": "https://cdn.example.se/layout/banner.png"}
				]
			}
		]
	}`)

	records := ParseIncito("ICA Nära", body)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Image)
}

func TestFindOffersRespectsDepthBound(t *testing.T) {
	// A chain nested past the depth cap must not reach the offer node.
	inner := map[string]interface{}{
		"role":        "offer",
		"child_views": []interface{}{map[string]interface{}{"text": "Djupt begravd vara"}},
	}
	node := interface{}(inner)
	for i := 0; i < maxTreeDepth+5; i++ {
		node = map[string]interface{}{"child_views": []interface{}{node}}
	}

	var offers []offerNode
	findOffers(node, 0, &offers)
	assert.Empty(t, offers)
}

func TestParseIncitoMultipleOffers(t *testing.T) {
	body := incitoBody(t, `{
		"child_views": [
			{"role": "offer", "child_views": [{"text": "Gurka"}, {"text": "10:-"}, {"text": "/st"}]},
			{"role": "offer", "child_views": [{"text": "Tomater"}, {"text": "25:-"}, {"text": "/kg"}]}
		]
	}`)

	records := ParseIncito("Stora Coop", body)
	require.Len(t, records, 2)
	assert.Equal(t, "Gurka", records[0].Name)
	assert.Equal(t, "/st", records[0].Unit)
	assert.Equal(t, "Tomater", records[1].Name)
	assert.Equal(t, "/kg", records[1].Unit)
}

func TestParseIncitoRootViewVisitedTwice(t *testing.T) {
	// Documents served under a root_view envelope get walked twice, so the
	// same offer comes out duplicated. Run-level dedup collapses it.
	body := incitoBody(t, `{
		"root_view": {
			"child_views": [
				{"role": "offer", "child_views": [{"text": "Gurka"}, {"text": "10:-"}]}
			]
		}
	}`)

	records := ParseIncito("Stora Coop", body)
	require.Len(t, records, 2)
	assert.Equal(t, records[0], records[1])

	deduped := Deduplicate(records)
	require.Len(t, deduped, 1)
	assert.Equal(t, "Gurka", deduped[0].Name)
}
