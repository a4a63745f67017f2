package scraper

// OfferRecord is the canonical offer shape shared by every extraction path.
// Only store and name are guaranteed; everything else is best effort and
// omitted from the JSON output when empty.
type OfferRecord struct {
	Store       string `json:"store"`
	Name        string `json:"name"`
	Price       string `json:"price,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
	OrdPris     string `json:"ord_pris,omitempty"`
	JfrPris     string `json:"jfr_pris,omitempty"`
	Image       string `json:"image,omitempty"`
}
