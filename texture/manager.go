// Package texture resolves gallery media to decoded textures. Each URL is
// fetched and decoded at most once; completions are handed back to the frame
// loop through Dispatch so callbacks never run concurrently with it.
package texture

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Handle is a texture that may not be loaded yet.
type Handle struct {
	URL string

	mu          sync.RWMutex
	ready       bool
	image       *image.NRGBA
	placeholder bool
	err         error
}

func (h *Handle) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

func (h *Handle) Image() *image.NRGBA {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.image
}

// Placeholder reports whether the asset failed and a blank texture stands in for it.
func (h *Handle) Placeholder() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.placeholder
}

func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *Handle) resolve(img *image.NRGBA, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		img = Placeholder()
		h.placeholder = true
		h.err = err
	}
	h.image = img
	h.ready = true
}

type entry struct {
	handle     *Handle
	waiters    []func(*Handle)
	done       chan struct{}
	dispatched bool
}

type Options struct {
	// MaxConcurrent bounds simultaneous fetch+decode work. Defaults to 6.
	MaxConcurrent int
	// MaxTextureSize scales larger images down; 0 keeps the original size.
	MaxTextureSize int
	// OnProgress receives the load percentage, see Progress.
	OnProgress func(percent int)
	Logger     Logger
}

// Stats are cumulative counters of the manager.
type Stats struct {
	Requested int
	Resolved  int
	Failed    int
	Loads     int
}

type Manager struct {
	loader   Loader
	opts     Options
	logger   Logger
	sem      *semaphore.Weighted
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	progress *Progress

	mu       sync.Mutex
	entries  map[string]*entry
	finished []*entry
	stats    Stats
}

func NewManager(loader Loader, opts Options) *Manager {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 6
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		loader:   loader,
		opts:     opts,
		logger:   logger,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		ctx:      ctx,
		cancel:   cancel,
		progress: NewProgress(opts.OnProgress),
		entries:  make(map[string]*entry),
	}
}

// Get returns the handle for media immediately. onReady (optional) runs
// exactly once: synchronously if the texture was already dispatched,
// otherwise from the Dispatch call that delivers it.
func (m *Manager) Get(media Media, onReady func(*Handle)) *Handle {
	m.mu.Lock()
	e := m.request(media)
	if e.dispatched {
		m.mu.Unlock()
		if onReady != nil {
			onReady(e.handle)
		}
		return e.handle
	}
	if onReady != nil {
		e.waiters = append(e.waiters, onReady)
	}
	m.mu.Unlock()
	return e.handle
}

// request must be called with m.mu held.
func (m *Manager) request(media Media) *entry {
	if e, ok := m.entries[media.URL]; ok {
		return e
	}
	e := &entry{
		handle: &Handle{URL: media.URL},
		done:   make(chan struct{}),
	}
	m.entries[media.URL] = e
	m.stats.Requested++

	m.wg.Add(1)
	go m.load(e)
	return e
}

func (m *Manager) load(e *entry) {
	defer m.wg.Done()

	img, err := m.fetch(e.handle.URL)
	if err != nil {
		m.logger.Warnf("texture %s failed, using placeholder: %v", e.handle.URL, err)
	} else {
		m.logger.Debugf("texture %s loaded (%dx%d)", e.handle.URL, img.Bounds().Dx(), img.Bounds().Dy())
	}
	e.handle.resolve(img, err)

	m.mu.Lock()
	m.finished = append(m.finished, e)
	if err != nil {
		m.stats.Failed++
	}
	m.mu.Unlock()
	close(e.done)
}

func (m *Manager) fetch(url string) (*image.NRGBA, error) {
	if err := m.sem.Acquire(m.ctx, 1); err != nil {
		return nil, err
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	m.stats.Loads++
	m.mu.Unlock()

	rc, err := m.loader.Open(m.ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Decode(rc, m.opts.MaxTextureSize)
}

// Dispatch delivers every load finished since the last call: callbacks fire
// and progress advances once per texture. It returns the number delivered.
func (m *Manager) Dispatch() int {
	m.mu.Lock()
	finished := m.finished
	m.finished = nil
	m.mu.Unlock()

	for _, e := range finished {
		m.mu.Lock()
		e.dispatched = true
		waiters := e.waiters
		e.waiters = nil
		m.stats.Resolved++
		resolved, requested := m.stats.Resolved, m.stats.Requested
		m.mu.Unlock()

		for _, fn := range waiters {
			fn(e.handle)
		}
		m.progress.Update(resolved, requested)
	}
	return len(finished)
}

// Wait blocks until every load started so far has finished (not dispatched).
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Preload requests every item and waits for all of them, then dispatches.
func (m *Manager) Preload(ctx context.Context, media []Media) error {
	g, ctx := errgroup.WithContext(ctx)

	m.mu.Lock()
	entries := make([]*entry, 0, len(media))
	for _, item := range media {
		entries = append(entries, m.request(item))
	}
	m.mu.Unlock()

	for _, e := range entries {
		g.Go(func() error {
			select {
			case <-e.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	err := g.Wait()
	m.Dispatch()
	return err
}

func (m *Manager) Percent() int {
	return m.progress.Percent()
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close abandons pending loads (they resolve as placeholders) and waits for workers.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
