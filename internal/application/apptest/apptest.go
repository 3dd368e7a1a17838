// Package apptest provides doubles shared by the application layer tests.
package apptest

import (
	"context"
	"strconv"
	"sync"

	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
)

// Recorder is a synchronous Publisher that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []domoutbox.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e domoutbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []domoutbox.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domoutbox.Event(nil), r.events...)
}

func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventName())
	}
	return out
}

// Of returns the recorded events of type T in publish order.
func Of[T domoutbox.Event](r *Recorder) []T {
	var out []T
	for _, e := range r.Events() {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Sequence returns deterministic ids "<prefix>-1", "<prefix>-2", ...
type Sequence struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (s *Sequence) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.Prefix + "-" + strconv.Itoa(s.n)
}

func (s *Sequence) NewID() string     { return s.next() }
func (s *Sequence) NewNumber() string { return s.next() }

// Gateway is a scriptable payment gateway. The zero value approves every charge.
type Gateway struct {
	mu       sync.Mutex
	Decline  string
	Err      error
	Requests []payment.ChargeRequest
}

func (g *Gateway) Charge(_ context.Context, req payment.ChargeRequest) (payment.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.Err != nil {
		return payment.Result{}, g.Err
	}
	if g.Decline != "" {
		return payment.Result{Success: false, Error: g.Decline}, nil
	}
	return payment.Result{Success: true, TransactionID: "TXN_" + strconv.Itoa(len(g.Requests))}, nil
}

func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}
