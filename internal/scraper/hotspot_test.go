package scraper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotspotBody(t *testing.T, raw string) interface{} {
	t.Helper()
	var body interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestParseHotspotsBasicOffer(t *testing.T) {
	body := hotspotBody(t, `[
		{
			"id": "h1",
			"offer": {
				"id": "offer-1",
				"heading": "Falukorv",
				"pricing": {"price": 25, "pre_price": 39.5},
				"quantity": {"unit": {"symbol": "kg"}}
			}
		}
	]`)

	records := ParseHotspots("ICA Maxi", body)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ICA Maxi", rec.Store)
	assert.Equal(t, "Falukorv", rec.Name)
	assert.Equal(t, "25:-", rec.Price)
	assert.Equal(t, "Ord.pris 39.5:-", rec.Description)
	assert.Equal(t, "kg", rec.Unit)
}

func TestParseHotspotsUnitSymbolVerbatim(t *testing.T) {
	body := hotspotBody(t, `[
		{"offer": {"heading": "Potatis", "quantity": {"unit": {"symbol": "st"}}}}
	]`)

	records := ParseHotspots("ICA Maxi", body)
	require.Len(t, records, 1)
	assert.Equal(t, "st", records[0].Unit)
}

func TestParseHotspotsWholeKronaPrice(t *testing.T) {
	body := hotspotBody(t, `[
		{"offer": {"heading": "Mjölk", "pricing": {"price": 59.0}}}
	]`)

	records := ParseHotspots("Willys", body)
	require.Len(t, records, 1)
	assert.Equal(t, "59:-", records[0].Price)
}

func TestParseHotspotsSkipsMissingHeading(t *testing.T) {
	body := hotspotBody(t, `[
		{"offer": {"pricing": {"price": 10}}},
		{"offer": {"heading": "   "}},
		{"offer": {"heading": "Smör", "pricing": {"price": 45}}}
	]`)

	records := ParseHotspots("Coop", body)
	require.Len(t, records, 1)
	assert.Equal(t, "Smör", records[0].Name)
}

func TestParseHotspotsImageShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain string",
			raw:  `[{"offer": {"heading": "A1", "image": "https://x/a.jpg"}}]`,
			want: "https://x/a.jpg",
		},
		{
			name: "list of strings",
			raw:  `[{"offer": {"heading": "A2", "images": ["https://x/b.jpg", "https://x/c.jpg"]}}]`,
			want: "https://x/b.jpg",
		},
		{
			name: "list of objects",
			raw:  `[{"offer": {"heading": "A3", "images": [{"url": "https://x/img.jpg"}]}}]`,
			want: "https://x/img.jpg",
		},
		{
			name: "object with view key",
			raw:  `[{"offer": {"heading": "A4", "image": {"view": "https://x/view.jpg", "other": 1}}}]`,
			want: "https://x/view.jpg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := ParseHotspots("ICA Kvantum", hotspotBody(t, tc.raw))
			require.Len(t, records, 1)
			assert.Equal(t, tc.want, records[0].Image)
		})
	}
}

func TestParseHotspotOffersKeepsIDs(t *testing.T) {
	body := hotspotBody(t, `{
		"hotspots": [
			{"id": "outer", "offer": {"heading": "Bröd"}},
			{"offer": {"id": "inner", "heading": "Kaffe"}}
		]
	}`)

	offers := parseHotspotOffers("Willys", body)
	require.Len(t, offers, 2)
	assert.Equal(t, "outer", offers[0].id)
	assert.Equal(t, "inner", offers[1].id)
}

func TestParseHotspotsFlatOfferWithoutEnvelope(t *testing.T) {
	body := hotspotBody(t, `{"offers": [{"heading": "Ägg 12-pack", "pricing": {"price": "32"}}]}`)

	records := ParseHotspots("Stora Coop", body)
	require.Len(t, records, 1)
	assert.Equal(t, "Ägg 12-pack", records[0].Name)
	assert.Equal(t, "32:-", records[0].Price)
}
