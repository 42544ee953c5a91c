package password

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	queueBuffer    = 64
)

type job struct {
	plaintext string
	stored    string
	verify    bool
	reply     chan result
}

type result struct {
	hash string
	ok   bool
	err  error
}

// ErrPoolStopped is returned for work submitted after Stop.
var ErrPoolStopped = errors.New("password pool stopped")

// Pool runs scrypt on a fixed set of workers so that concurrent logins cannot
// allocate unbounded KDF memory. It satisfies ports.PasswordHasher.
type Pool struct {
	jobs    chan job
	workers int
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewPool creates a Pool with the given number of workers.
// If workers <= 0, defaultWorkers is used.
func NewPool(workers int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pool{
		jobs:    make(chan job, queueBuffer),
		workers: workers,
		log:     log,
	}
}

// Start launches the workers. They run until Stop.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
}

// Stop rejects new work, lets the workers finish every queued job and waits
// for them to exit. Calling Stop more than once is safe.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Hash derives a stored form for plaintext on a pool worker.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	res, err := p.submit(ctx, job{plaintext: plaintext})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify checks plaintext against stored on a pool worker.
func (p *Pool) Verify(ctx context.Context, plaintext, stored string) (bool, error) {
	res, err := p.submit(ctx, job{plaintext: plaintext, stored: stored, verify: true})
	if err != nil {
		return false, err
	}
	return res.ok, nil
}

func (p *Pool) submit(ctx context.Context, j job) (result, error) {
	// buffered so a worker never blocks on a caller that already gave up
	j.reply = make(chan result, 1)

	if err := p.enqueue(ctx, j); err != nil {
		return result{}, err
	}

	select {
	case res := <-j.reply:
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// enqueue holds the read lock across the send so Stop cannot close jobs
// under a pending sender.
func (p *Pool) enqueue(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		start := time.Now()
		var res result
		if j.verify {
			res.ok = Verify(j.plaintext, j.stored)
		} else {
			res.hash, res.err = Hash(j.plaintext)
		}
		if res.err != nil {
			p.log.Error().Err(res.err).Int("worker_id", id).Msg("password hashing failed")
		}
		p.log.Trace().
			Int("worker_id", id).
			Bool("verify", j.verify).
			Dur("took", time.Since(start)).
			Msg("password job done")
		j.reply <- res
	}
}
