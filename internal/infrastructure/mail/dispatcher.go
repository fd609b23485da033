package mail

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell/internal/api/metrics"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 30 * time.Second
)

// Dispatcher fans emails out to a fixed set of workers, sharded by recipient
// so mails to one address keep their relative order. Delivery is best
// effort: failures are logged and counted, never reported to the enqueuer.
type Dispatcher struct {
	workers []chan ports.Email
	sender  ports.MailSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.MailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Email, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Email, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an email to the worker responsible for its recipient. It
// never blocks: when the worker's queue is full the email is dropped,
// logged and counted, keeping the enqueuing request path unaffected by
// delivery backpressure.
func (d *Dispatcher) Enqueue(email ports.Email) {
	i := d.shardIndex(email.To)
	select {
	case d.workers[i] <- email:
		metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		metrics.EmailsTotal.WithLabelValues(email.Kind, "dropped").Inc()
		d.log.Error().
			Str("to", email.To).
			Str("kind", email.Kind).
			Int("worker", i).
			Msg("email queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Email) {
	for {
		select {
		case <-ctx.Done():
			return
		case email, ok := <-ch:
			if !ok {
				return
			}
			metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))

			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := d.sender.Send(sendCtx, email)
			cancel()

			if err != nil {
				metrics.EmailsTotal.WithLabelValues(email.Kind, "error").Inc()
				d.log.Error().Err(err).
					Str("to", email.To).
					Str("kind", email.Kind).
					Int("worker_id", id).
					Msg("email delivery failed")
				continue
			}
			metrics.EmailsTotal.WithLabelValues(email.Kind, "sent").Inc()
		}
	}
}
