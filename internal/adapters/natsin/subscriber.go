// internal/adapters/natsin/subscriber.go
package natsin

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/nats-io/nats.go"

	"ingestrouter/internal/adapters/event"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/rate"
	"ingestrouter/internal/platform/workerpool"
)

// PayloadHandler procesa una notificación cruda.
type PayloadHandler interface {
	HandlePayload(ctx context.Context, source string, payload []byte) event.Report
}

// Config configura la suscripción.
type Config struct {
	URL     string
	Subject string
	Queue   string // grupo de cola; vacío = todos los suscriptores reciben cada mensaje

	// Timeout por batch; 0 = sin timeout
	Timeout time.Duration

	// Rate limita los batches iniciados por segundo; 0 = sin límite
	Rate float64
}

// Connect abre una conexión con reconexión automática y handlers de estado en el log.
func Connect(url string, logger logx.Logger, extra ...nats.Option) (*nats.Conn, error) {
	log := logger.With("component", "nats")
	opts := []nats.Option{
		nats.Name("ingestrouter"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Debug("nats connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("nats async error", "subject", subject, "error", err.Error())
		}),
	}
	opts = append(opts, extra...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(errors.Join(errors.ErrTransportUnavailable, err), "connect %s", url)
	}
	return conn, nil
}

// Subscriber entrega cada mensaje del subject al handler a través del worker pool.
type Subscriber struct {
	cfg     Config
	conn    *nats.Conn
	sub     *nats.Subscription
	handler PayloadHandler
	pool    *workerpool.WorkerPool
	limiter *rate.Limiter
	logger  logx.Logger
	ctx     context.Context
}

// NewSubscriber crea un suscriptor. Con pool nil los mensajes se procesan en el
// goroutine de entrega de NATS, de a uno.
func NewSubscriber(cfg Config, conn *nats.Conn, handler PayloadHandler, pool *workerpool.WorkerPool, logger logx.Logger) *Subscriber {
	s := &Subscriber{
		cfg:     cfg,
		conn:    conn,
		handler: handler,
		pool:    pool,
		logger:  logger.With("component", "nats-subscriber", "subject", cfg.Subject),
		ctx:     context.Background(),
	}
	if cfg.Rate > 0 {
		s.limiter = rate.New(cfg.Rate, int(math.Max(1, cfg.Rate)))
	}
	return s
}

// Start se suscribe; ctx es el contexto raíz de cada batch procesado sin pool.
func (s *Subscriber) Start(ctx context.Context) error {
	if s.conn == nil {
		return errors.Wrap(errors.ErrMissingConfig, "nats connection is nil")
	}
	s.ctx = ctx

	var err error
	if s.cfg.Queue != "" {
		s.sub, err = s.conn.QueueSubscribe(s.cfg.Subject, s.cfg.Queue, s.onMessage)
	} else {
		s.sub, err = s.conn.Subscribe(s.cfg.Subject, s.onMessage)
	}
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", s.cfg.Subject)
	}

	s.logger.Info("listening for notifications", "queue", s.cfg.Queue)
	return nil
}

// Stop drena la suscripción y espera a que termine o a que ctx venza. Los
// mensajes ya recibidos se entregan al pool antes de cerrar; el pool debe
// seguir aceptando tareas hasta que Stop retorne.
func (s *Subscriber) Stop(ctx context.Context) error {
	if s.sub == nil {
		return nil
	}
	if err := s.sub.Drain(); err != nil {
		return errors.Wrapf(err, "drain %s", s.cfg.Subject)
	}

	tick := time.NewTicker(drainPoll)
	defer tick.Stop()
	for s.sub.IsValid() {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "drain %s", s.cfg.Subject)
		case <-tick.C:
		}
	}
	return nil
}

const drainPoll = 50 * time.Millisecond

func (s *Subscriber) onMessage(msg *nats.Msg) {
	task := workerpool.TaskFunc{
		Label: msg.Subject,
		Fn: func(ctx context.Context) error {
			s.process(ctx, msg)
			return nil
		},
	}

	if s.pool == nil {
		_ = task.Execute(s.ctx)
		return
	}
	if err := s.pool.Enqueue(task); err != nil {
		s.logger.Warn("dropping notification, pool unavailable", "error", err.Error())
	}
}

func (s *Subscriber) process(ctx context.Context, msg *nats.Msg) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("dropping notification, shutting down", "error", err.Error())
			return
		}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	rep := s.handler.HandlePayload(ctx, msg.Subject, msg.Data)

	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(rep)
	if err != nil {
		s.logger.Err(err, "msg", "encode report")
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("reply failed", "reply", msg.Reply, "error", err.Error())
	}
}
