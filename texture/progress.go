package texture

import (
	"math"
	"sync"
)

// Progress turns resolved/requested counts into a 0-100 percentage that only
// ever grows. The callback fires once per new integer percentage.
type Progress struct {
	mu      sync.Mutex
	percent int
	fn      func(percent int)
}

func NewProgress(fn func(percent int)) *Progress {
	return &Progress{fn: fn}
}

func (p *Progress) Update(resolved, requested int) {
	if requested <= 0 {
		return
	}
	pct := int(math.Round(float64(resolved) / float64(requested) * 100))
	pct = max(0, min(pct, 100))

	p.mu.Lock()
	if pct <= p.percent {
		p.mu.Unlock()
		return
	}
	p.percent = pct
	fn := p.fn
	p.mu.Unlock()

	if fn != nil {
		fn(pct)
	}
}

func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}
