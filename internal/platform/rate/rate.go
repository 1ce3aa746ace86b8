// Package rate limita cuántos batches por segundo arranca un consumidor de
// notificaciones, para no saturar el backend de storage en ráfagas.
package rate

import (
	"context"
	"sync"
	"time"
)

// Limiter es un token bucket: rate tokens por segundo hasta burst acumulados.
type Limiter struct {
	rate  float64
	burst int

	mu     sync.Mutex
	tokens float64
	last   time.Time
	now    func() time.Time
}

// New crea un limiter que arranca con el bucket lleno. Valores <= 0 usan 1.
func New(rate float64, burst int) *Limiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
		now:    time.Now,
	}
}

// Wait bloquea hasta obtener un token o hasta que ctx se cancele.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait := l.reserve()
		if wait == 0 {
			return nil
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Allow consume un token si hay disponible, sin bloquear.
func (l *Limiter) Allow() bool {
	return l.reserve() == 0
}

// reserve consume un token y retorna 0, o retorna cuánto falta para el próximo.
func (l *Limiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	if l.tokens >= 1 {
		l.tokens--
		return 0
	}

	missing := 1.0 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second))
}

// Tokens retorna los tokens disponibles.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	return l.tokens
}

func (l *Limiter) Rate() float64 { return l.rate }
func (l *Limiter) Burst() int    { return l.burst }

// advance suma los tokens generados desde la última llamada. Requiere l.mu.
func (l *Limiter) advance() {
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	l.last = now
}
