package scraper

import (
	"time"

	"github.com/go-rod/rod"
)

// RodPage adapts a rod page to the Session's Page interface.
type RodPage struct {
	page *rod.Page
}

func NewRodPage(page *rod.Page) *RodPage {
	return &RodPage{page: page}
}

// Rod exposes the underlying page for response capture, which needs the raw
// CDP event stream.
func (r *RodPage) Rod() *rod.Page {
	return r.page
}

func (r *RodPage) Navigate(url string, timeout time.Duration) error {
	p := r.page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

// WaitIdle blocks until no request has been in flight for 500ms or the
// timeout passes. Rod's wait returns quietly on timeout, which is what the
// extraction paths want.
func (r *RodPage) WaitIdle(timeout time.Duration) error {
	p := r.page.Timeout(timeout)
	wait := p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	wait()
	return nil
}

func (r *RodPage) Eval(js string, args ...interface{}) (interface{}, error) {
	res, err := r.page.Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

func (r *RodPage) HTML() (string, error) {
	return r.page.HTML()
}
