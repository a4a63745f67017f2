package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jsvensson/matdeals/internal/scraper"

	"github.com/stretchr/testify/assert"
)

type stubScraper struct {
	mu      sync.Mutex
	runs    int
	records []scraper.OfferRecord
}

func (s *stubScraper) Run() []scraper.OfferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	return s.records
}

func (s *stubScraper) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

type stubExporter struct {
	mu       sync.Mutex
	exported [][]scraper.OfferRecord
	err      error
}

func (e *stubExporter) Export(records []scraper.OfferRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exported = append(e.exported, records)
	return e.err
}

type stubPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	trimmed  bool
	err      error
}

func newStubPublisher() *stubPublisher {
	return &stubPublisher{messages: make(map[string][][]byte)}
}

func (p *stubPublisher) Publish(store string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages[store] = append(p.messages[store], message)
	return nil
}

func (p *stubPublisher) TrimStreams() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trimmed = true
	return nil
}

type noopLogger struct{}

func (noopLogger) LogError(source string, err error)          {}
func (noopLogger) LogInfo(format string, args ...interface{}) {}

func TestSingleRunExportsAndPublishes(t *testing.T) {
	records := []scraper.OfferRecord{
		{Store: "ICA Supermarket", Name: "Kycklingfilé", Price: "59:-"},
		{Store: "Coop", Name: "Mjölk", Price: "15:-"},
	}
	s := &stubScraper{records: records}
	e := &stubExporter{}
	p := newStubPublisher()

	w := NewWorker(context.Background(), s, e, p, noopLogger{}, 0)
	err := w.Start()

	assert.NoError(t, err)
	assert.Equal(t, 1, s.runCount())
	assert.Len(t, e.exported, 1)
	assert.Len(t, p.messages["ICA Supermarket"], 1)
	assert.Len(t, p.messages["Coop"], 1)
	assert.True(t, p.trimmed)
}

func TestSingleRunWithoutPublisher(t *testing.T) {
	s := &stubScraper{records: []scraper.OfferRecord{{Store: "Willys", Name: "Ost"}}}
	e := &stubExporter{}

	w := NewWorker(context.Background(), s, e, nil, noopLogger{}, 0)
	assert.NoError(t, w.Start())
	assert.Len(t, e.exported, 1)
}

func TestExportErrorPropagates(t *testing.T) {
	s := &stubScraper{}
	e := &stubExporter{err: errors.New("disk full")}

	w := NewWorker(context.Background(), s, e, nil, noopLogger{}, 0)
	err := w.Start()
	assert.Error(t, err)
}

func TestPeriodicRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &stubScraper{}
	e := &stubExporter{}

	w := NewWorker(ctx, s, e, nil, noopLogger{}, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	assert.GreaterOrEqual(t, s.runCount(), 2)
}
