// Path: internal/service/detail_session.go
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pokedex/internal/domain"
)

// DetailSession runs detail-fetch sequences for one viewer. Opening a new
// sequence cancels the previous one, and a sequence that is no longer
// current never reaches its commit function.
type DetailSession struct {
	svc *Service
	log *zap.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewDetailSession creates an idle session.
func (s *Service) NewDetailSession() *DetailSession {
	return &DetailSession{svc: s, log: s.log.Named("detail")}
}

// Open starts loading id in the background. commit is called with the
// result, under the session lock, only if no newer Open or Close happened.
func (d *DetailSession) Open(ctx context.Context, id int, commit func(domain.Detail, error)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	seqCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer cancel()

		detail, err := d.svc.Detail(seqCtx, id)

		d.mu.Lock()
		defer d.mu.Unlock()
		if seq != d.seq || d.closed {
			d.log.Debug("Discarding abandoned detail load", zap.Int("id", id))
			return
		}
		commit(detail, err)
	}()
}

// Close cancels the running sequence and waits for it to finish.
func (d *DetailSession) Close() {
	d.mu.Lock()
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
