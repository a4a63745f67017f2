package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"

	"jsvensson/matdeals/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// CapturedResponse is one decoded JSON body captured off the network.
type CapturedResponse struct {
	URL  string
	Body interface{}
}

// CaptureBuffer accumulates responses from the CDP event listener. The
// listener goroutine writes while the extraction path reads, hence the lock.
type CaptureBuffer struct {
	mu        sync.Mutex
	responses []CapturedResponse
}

func (b *CaptureBuffer) add(r CapturedResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses = append(b.responses, r)
}

// Responses returns a copy of everything captured so far.
func (b *CaptureBuffer) Responses() []CapturedResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]CapturedResponse, len(b.responses))
	copy(out, b.responses)
	return out
}

// StartCapture registers a network listener that collects JSON responses whose
// URL contains any of the patterns. The returned stop function detaches the
// listener so the next store starts with a clean slate. Responses that fail to
// fetch or decode are dropped silently, matching the best-effort nature of
// passive capture.
func StartCapture(page *rod.Page, patterns []string) (*CaptureBuffer, func()) {
	log := logger.ForBrowser()
	buf := &CaptureBuffer{}

	ctx, cancel := context.WithCancel(page.GetContext())
	p := page.Context(ctx)

	go p.EachEvent(func(e *proto.NetworkResponseReceived) {
		url := e.Response.URL
		if !urlMatchesAny(url, patterns) {
			return
		}
		if !strings.Contains(e.Response.MIMEType, "json") {
			return
		}

		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(p)
		if err != nil {
			return
		}
		raw := body.Body
		if body.Base64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return
			}
			raw = string(decoded)
		}

		var parsed interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return
		}

		log.Debug().Str("url", url).Msg("captured response")
		buf.add(CapturedResponse{URL: url, Body: parsed})
	})()

	return buf, cancel
}

func urlMatchesAny(url string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(url, p) {
			return true
		}
	}
	return false
}
