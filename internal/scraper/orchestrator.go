package scraper

import (
	"errors"
	"fmt"
	"strings"

	"jsvensson/matdeals/config"
	"jsvensson/matdeals/logger"
	apperrors "jsvensson/matdeals/pkg/errors"

	"github.com/go-rod/rod"
)

// Request URL fragments that mark catalog traffic worth capturing.
var (
	ereklambladPatterns = []string{"tjek.com", "incito", "paged-publications"}
	coopPatterns        = []string{"api.coop.se", "/offers", "promotions"}
)

// Orchestrator runs every enabled store through its extraction path, one
// store at a time on the shared session, and merges the results.
type Orchestrator struct {
	session *Session
	pub     *PublicationClient
	cfg     *config.Config
	log     *logger.Logger

	// seams for tests
	scrapeFn  func(store config.StoreConfig) ([]OfferRecord, error)
	captureFn func(patterns []string) (*CaptureBuffer, func())
}

func NewOrchestrator(session *Session, page *rod.Page, pub *PublicationClient, cfg *config.Config) *Orchestrator {
	o := &Orchestrator{
		session: session,
		pub:     pub,
		cfg:     cfg,
		log:     logger.ForWorker(),
	}
	o.scrapeFn = o.scrapeStore
	o.captureFn = func(patterns []string) (*CaptureBuffer, func()) {
		return StartCapture(page, patterns)
	}
	return o
}

// Run processes all configured stores sequentially. A store that fails is
// logged and skipped; the run always produces whatever the other stores
// yielded, deduplicated by store and name.
func (o *Orchestrator) Run() []OfferRecord {
	var all []OfferRecord

	for _, store := range o.cfg.Stores {
		if !store.Enabled {
			o.log.Debug().Str("store", store.Name).Msg("store disabled, skipping")
			continue
		}

		log := logger.ForStore(store.Name)
		log.Info().Str("method", string(store.Method)).Msg("scraping store")

		records, err := o.scrapeFn(store)
		if err != nil {
			var serr *apperrors.ScrapeError
			if errors.As(err, &serr) && serr.Fatal() {
				log.Error().Err(err).Msg("fatal error, aborting pass")
				break
			}
			log.Warn().Err(err).Msg("store failed, continuing with remaining stores")
			continue
		}
		log.Info().Int("offers", len(records)).Msg("store finished")
		all = append(all, records...)
	}

	return Deduplicate(all)
}

// scrapeStore dispatches on the store's method. A panic anywhere inside one
// store's extraction is converted to an error so it cannot take down the run.
func (o *Orchestrator) scrapeStore(store config.StoreConfig) (records []OfferRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = apperrors.New(apperrors.ErrorTypeParsing, store.Name, fmt.Sprintf("panic during extraction: %v", r), nil)
		}
	}()

	switch store.Method {
	case config.MethodEreklamblad, config.MethodStoreSpecific:
		return o.scrapePublication(store)
	case config.MethodInventory:
		return o.scrapeInventory(store)
	case config.MethodCoopAPI:
		return o.scrapeCoopAPI(store)
	}
	return nil, apperrors.NewConfiguration("unknown scrape method "+string(store.Method), nil)
}

// scrapePublication captures catalog traffic while the store's catalog page
// loads and scrolls, then parses whatever documents came through.
func (o *Orchestrator) scrapePublication(store config.StoreConfig) ([]OfferRecord, error) {
	buf, stop := o.captureFn(ereklambladPatterns)
	defer stop()

	if err := o.session.Navigate(store.URL); err != nil {
		return nil, err
	}
	o.session.ScrollToBottom(o.cfg.ScrollStepPx, o.cfg.ScrollStepDelay, o.cfg.MaxScrollSteps)
	o.session.Settle()

	records := o.extractFromCaptures(store.Name, buf.Responses())
	if len(records) > 0 {
		return records, nil
	}
	return o.domFallback(store.Name)
}

// scrapeInventory resolves the store's publication and walks its pages via
// the publication API, correlating images from the listing page. If the walk
// comes up empty the passively captured responses are used instead.
func (o *Orchestrator) scrapeInventory(store config.StoreConfig) ([]OfferRecord, error) {
	buf, stop := o.captureFn(ereklambladPatterns)
	defer stop()

	images := o.session.CollectOfferImages(store.URL)

	html, err := o.session.HTML()
	if err != nil {
		html = ""
	}

	captured := buf.Responses()
	if id := o.pub.ResolvePublicationID(captured, html, store.URL); id != "" {
		if records := o.pub.WalkPages(store.Name, id, images); len(records) > 0 {
			return records, nil
		}
	}

	if records := o.extractFromCaptures(store.Name, captured); len(records) > 0 {
		return records, nil
	}
	return o.domFallback(store.Name)
}

// scrapeCoopAPI captures Coop's member-offer API responses for the store.
func (o *Orchestrator) scrapeCoopAPI(store config.StoreConfig) ([]OfferRecord, error) {
	buf, stop := o.captureFn(coopPatterns)
	defer stop()

	if err := o.session.Navigate(store.URL); err != nil {
		return nil, err
	}
	o.session.ScrollToBottom(o.cfg.ScrollStepPx, o.cfg.ScrollStepDelay, o.cfg.MaxScrollSteps)
	o.session.Settle()

	var records []OfferRecord
	for _, r := range buf.Responses() {
		records = append(records, ParseCoopOffers(store.Name, r.Body)...)
	}
	if len(records) > 0 {
		return records, nil
	}
	return o.domFallback(store.Name)
}

// extractFromCaptures routes each captured document to the adapter its URL
// indicates. A response can match both checks and feed both adapters; the
// run-level dedup absorbs any overlap.
func (o *Orchestrator) extractFromCaptures(store string, captured []CapturedResponse) []OfferRecord {
	var records []OfferRecord
	for _, r := range captured {
		if strings.Contains(r.URL, "incito") {
			records = append(records, ParseIncito(store, r.Body)...)
		}
		if strings.Contains(r.URL, "paged-publications") {
			records = append(records, ParseHotspots(store, r.Body)...)
		}
	}
	return records
}

func (o *Orchestrator) domFallback(store string) ([]OfferRecord, error) {
	text, err := o.session.VisibleText()
	if err != nil {
		return nil, err
	}
	records := ParseVisibleText(store, text)
	if len(records) > 0 {
		logger.ForStore(store).Info().Int("offers", len(records)).Msg("offers recovered from page text")
	}
	return records, nil
}

// Deduplicate drops repeated offers, keeping the first occurrence of each
// store and name pair.
func Deduplicate(records []OfferRecord) []OfferRecord {
	type key struct {
		store string
		name  string
	}

	seen := make(map[key]bool, len(records))
	out := make([]OfferRecord, 0, len(records))
	for _, r := range records {
		k := key{store: r.Store, name: r.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
