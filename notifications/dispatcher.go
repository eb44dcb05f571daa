package notifications

import (
	"context"
	"sync"

	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
	"go.uber.org/zap"
)

type delivery struct {
	recipient models.User
	event     services.Event
}

// Dispatcher queues events and sends them from a background worker.
// Notify never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	queue  chan delivery

	mu      sync.Mutex
	running bool
	closed  bool
	done    chan struct{}
}

// NewDispatcher creates a dispatcher with a queue of size entries
func NewDispatcher(sender Sender, log *zap.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	return &Dispatcher{
		sender: sender,
		log:    log,
		queue:  make(chan delivery, size),
		done:   make(chan struct{}),
	}
}

// Notify implements services.Notifier
func (d *Dispatcher) Notify(recipient models.User, event services.Event) {
	if recipient.Email == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("dispatcher stopped, dropping notification", zap.String("event", string(event.Type)))
		return
	}

	select {
	case d.queue <- delivery{recipient: recipient, event: event}:
	default:
		d.log.Warn("notification queue full, dropping notification",
			zap.String("event", string(event.Type)),
			zap.String("to", recipient.Email),
		)
	}
}

// Start launches the worker. It returns once ctx is cancelled or Stop drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	go d.run(ctx)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(item)
		}
	}
}

// Stop closes the queue and waits for pending notifications to be sent
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	running := d.running
	d.mu.Unlock()

	if running {
		<-d.done
	}
}

func (d *Dispatcher) deliver(item delivery) {
	msg, err := Render(item.recipient, item.event)
	if err != nil {
		d.log.Error("failed to render notification", zap.String("event", string(item.event.Type)), zap.Error(err))
		return
	}
	if err := d.sender.Send(msg); err != nil {
		d.log.Error("failed to send notification",
			zap.String("event", string(item.event.Type)),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("notification sent", zap.String("event", string(item.event.Type)), zap.String("to", msg.To))
}
