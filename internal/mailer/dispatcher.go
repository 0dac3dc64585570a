package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/prastiyo12/userhub_api/internal/telemetry"
)

const (
	defaultBuffer      = 256
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher delivers messages on a background worker so that mail outages
// never delay or fail the request that produced them. Delivery is
// best-effort: failures are logged and dropped.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration

	mu     sync.Mutex
	closed bool

	wg sync.WaitGroup
}

func NewDispatcher(sender Sender, buffer int, sendTimeout time.Duration) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, buffer),
		timeout: sendTimeout,
	}
}

// Start launches the delivery worker. The worker drains the queue until
// Close is called.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Enqueue queues a message without blocking. When the buffer is full, or
// the dispatcher is already closed, the message is dropped and the drop is
// logged.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		telemetry.LogWarn(context.Background(), "mail queue closed, message dropped",
			telemetry.LogString("mail.to", msg.To),
			telemetry.LogString("mail.subject", msg.Subject),
		)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		telemetry.LogWarn(context.Background(), "mail queue full, message dropped",
			telemetry.LogString("mail.to", msg.To),
			telemetry.LogString("mail.subject", msg.Subject),
		)
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
// Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, msg)
		cancel()

		if err != nil {
			telemetry.LogError(context.Background(), "mail delivery failed",
				telemetry.LogString("mail.to", msg.To),
				telemetry.LogString("mail.subject", msg.Subject),
				telemetry.LogString("error", err.Error()),
			)
			continue
		}

		telemetry.LogInfo(context.Background(), "mail delivered",
			telemetry.LogString("mail.to", msg.To),
			telemetry.LogString("mail.subject", msg.Subject),
		)
	}
}
