package worker

import (
	"context"
	"encoding/json"
	"time"

	"jsvensson/matdeals/helpers"
	"jsvensson/matdeals/internal/scraper"
	"jsvensson/matdeals/logger"
)

// Scraper runs one full pass over every configured store.
type Scraper interface {
	Run() []scraper.OfferRecord
}

// Exporter persists a run's offers.
type Exporter interface {
	Export(records []scraper.OfferRecord) error
}

// Publisher pushes individual offers to an external stream.
type Publisher interface {
	Publish(store string, message []byte) error
	TrimStreams() error
}

// Worker drives the scrape/export/publish cycle. With a zero interval it runs
// once and returns; otherwise it repeats until the context is cancelled.
type Worker struct {
	ctx       context.Context
	scraper   Scraper
	exporter  Exporter
	publisher Publisher
	errLog    helpers.LoggerInterface
	interval  time.Duration
}

func NewWorker(ctx context.Context, s Scraper, e Exporter, p Publisher, errLog helpers.LoggerInterface, interval time.Duration) *Worker {
	return &Worker{
		ctx:       ctx,
		scraper:   s,
		exporter:  e,
		publisher: p,
		errLog:    errLog,
		interval:  interval,
	}
}

// Start blocks until the context is cancelled or, for single-run mode, until
// the first pass completes.
func (w *Worker) Start() error {
	log := logger.ForWorker()

	if w.interval <= 0 {
		log.Info().Msg("running single scrape pass")
		return w.runOnce()
	}

	log.Info().Dur("interval", w.interval).Msg("starting periodic scraping")
	for {
		if err := w.runOnce(); err != nil {
			log.Error().Err(err).Msg("scrape pass failed")
		}

		select {
		case <-w.ctx.Done():
			log.Info().Msg("worker stopped")
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

func (w *Worker) runOnce() error {
	log := logger.ForWorker()
	start := time.Now()

	records := w.scraper.Run()
	log.Info().Int("offers", len(records)).Dur("took", time.Since(start)).Msg("scrape pass finished")

	if err := w.exporter.Export(records); err != nil {
		w.errLog.LogError("export", err)
		return err
	}

	if w.publisher != nil {
		w.publishRecords(records)
	}
	return nil
}

// publishRecords pushes each offer individually so one bad record cannot
// block the rest of the stream.
func (w *Worker) publishRecords(records []scraper.OfferRecord) {
	log := logger.ForPublisher()

	published := 0
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			w.errLog.LogError("publish", err)
			continue
		}
		if err := w.publisher.Publish(r.Store, data); err != nil {
			w.errLog.LogError("publish", err)
			continue
		}
		published++
	}
	log.Info().Int("published", published).Msg("offers published")

	if err := w.publisher.TrimStreams(); err != nil {
		log.Warn().Err(err).Msg("failed to trim streams")
	}
}
