package main

import (
	"context"
	"fmt"
	"sync"

	"id5multiplexing/adapters/myredis"
	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/events"
	"id5multiplexing/fetcher"
	"id5multiplexing/instance"
	"id5multiplexing/interfaces"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

// pageDeps are the shared collaborators of every instance on the page.
type pageDeps struct {
	transport interfaces.HTTPTransport
	meter     interfaces.MeterRegistry
	redis     redis.UniversalClient
	logger    log.Logger
}

// page is a running simulation: one window tree and the instances registered in it.
type page struct {
	top       *messaging.Window
	instances []*instance.Instance
	logger    log.Logger

	mu      sync.Mutex
	results map[string]domain.UserID
	ready   chan struct{}
	pending int
}

// Result is what one instance received.
type Result struct {
	InstanceID string
	Window     string
	Source     string
	UserID     domain.UserID
	Ready      bool
}

func buildPage(cfg *Config, deps pageDeps) *page {
	p := &page{
		logger:  log.With(deps.logger, "component", "page"),
		results: make(map[string]domain.UserID),
		ready:   make(chan struct{}),
	}
	stores := make(map[string]interfaces.StorageApi)
	storageFor := func(origin string) interfaces.StorageApi {
		if s, ok := stores[origin]; ok {
			return s
		}
		var s interfaces.StorageApi
		if deps.redis != nil {
			s = myredis.NewStorage(deps.redis, "id5page:"+origin)
		} else {
			s = storage.NewMemoryStorage()
		}
		stores[origin] = s
		return s
	}

	p.top = messaging.NewTopWindow(cfg.Page.Name, deps.logger)
	p.addWindow(p.top, cfg.Page, cfg, deps, storageFor)
	p.pending = len(p.instances)
	if p.pending == 0 {
		close(p.ready)
	}
	return p
}

func (p *page) addWindow(w *messaging.Window, wc WindowConfig, cfg *Config, deps pageDeps, storageFor func(string) interfaces.StorageApi) {
	for _, ic := range wc.Instances {
		href := ic.Href
		if href == "" {
			href = "https://" + wc.Origin + "/"
		}
		inst := instance.New(w, storageFor(wc.Origin), instance.Options{
			Properties: domain.Properties{
				Source:        ic.Source,
				SourceVersion: ic.SourceVersion,
				Href:          href,
				FetchIdData: domain.FetchIdData{
					PartnerID:   ic.PartnerID,
					Pd:          ic.Pd,
					MaxCascades: ic.MaxCascades,
				},
			},
			OperatingMode:      ic.Mode,
			Transport:          deps.transport,
			Fetcher:            fetcher.Config{Endpoint: cfg.Endpoint, Version: ic.SourceVersion},
			ExtensionEndpoints: cfg.Extensions,
			Meter:              deps.meter,
			Logger:             deps.logger,
		})
		id, window, source := inst.ID(), wc.Name, ic.Source
		inst.Follower().On(events.UserIDReady, func(payload any) {
			ev, ok := payload.(events.UserIDReadyEvent)
			if !ok {
				return
			}
			level.Info(p.logger).Log("msg", "uid ready", "instanceId", id, "window", window, "source", source,
				"uid", ev.UserID.ID, "fromCache", ev.UserID.IsFromCache)
			p.onReady(id, ev.UserID)
		})
		inst.Follower().On(events.CascadeNeeded, func(payload any) {
			if data, ok := payload.(domain.CascadeData); ok {
				level.Info(p.logger).Log("msg", "cascade needed", "instanceId", id, "partnerId", data.PartnerID)
			}
		})
		p.instances = append(p.instances, inst)
	}
	for _, fc := range wc.Frames {
		p.addWindow(w.AddFrame(fc.Name), fc, cfg, deps, storageFor)
	}
}

func (p *page) onReady(id string, uid domain.UserID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, seen := p.results[id]
	p.results[id] = uid
	if seen {
		return
	}
	p.pending--
	if p.pending == 0 {
		close(p.ready)
	}
}

// Run registers every instance, hands them the consent read from the page's CMP and waits until
// each has a uid or ctx ends.
func (p *page) Run(ctx context.Context, cfg *Config) ([]Result, error) {
	cmp := consent.CmpClientFunc(func(context.Context) (consent.Data, error) { return cfg.Consent, nil })
	data := consent.Lookup(ctx, cmp, p.logger)
	for _, inst := range p.instances {
		inst.Register(cfg.ElectionDelay)
		inst.Follower().UpdateConsent(data)
	}

	var err error
	select {
	case <-p.ready:
	case <-ctx.Done():
		err = fmt.Errorf("not every instance got a uid: %w", ctx.Err())
	}
	return p.snapshot(), err
}

func (p *page) snapshot() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, 0, len(p.instances))
	for _, inst := range p.instances {
		uid, ok := p.results[inst.ID()]
		props := inst.Properties()
		out = append(out, Result{
			InstanceID: inst.ID(),
			Window:     inst.Follower().Window().Name(),
			Source:     props.Source,
			UserID:     uid,
			Ready:      ok,
		})
	}
	return out
}

// Close unregisters every instance and closes the window tree.
func (p *page) Close() {
	for _, inst := range p.instances {
		inst.Unregister()
	}
	p.top.Close()
}
