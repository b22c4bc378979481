package mailer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/profilehub/apiserver/internal/mq"
)

// Channel is the message queue channel outbound mail travels on.
const Channel = "mail.outbound"

// Envelope is the queued representation of a mail send request.
type Envelope struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// QueueMailer publishes send requests to the message queue instead of
// delivering them inline. A Worker on the other side performs delivery.
type QueueMailer struct {
	queue *mq.MQ
}

func NewQueueMailer(queue *mq.MQ) *QueueMailer {
	return &QueueMailer{queue: queue}
}

func (m *QueueMailer) Send(ctx context.Context, to, subject, templateName string, data map[string]string) error {
	// Fail fast on unknown templates before anything hits the queue.
	if _, err := Render(templateName, data); err != nil {
		return err
	}

	payload, err := json.Marshal(Envelope{
		To:       to,
		Subject:  subject,
		Template: templateName,
		Data:     data,
	})
	if err != nil {
		return err
	}

	_, err = m.queue.Publish(ctx, Channel, payload, map[string]string{
		"template": templateName,
	})
	return err
}

// Worker consumes queued envelopes and delivers them with the wrapped
// mailer. Run blocks until the context is cancelled.
type Worker struct {
	queue    *mq.MQ
	delivery Mailer
}

func NewWorker(queue *mq.MQ, delivery Mailer) *Worker {
	return &Worker{queue: queue, delivery: delivery}
}

func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Subscribe(ctx, Channel, func(ctx context.Context, msg mq.Message) error {
		var envelope Envelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			// Malformed payloads would requeue forever; drop them.
			log.Printf("dropping malformed mail envelope %s: %v", msg.ID, err)
			return nil
		}
		return w.delivery.Send(ctx, envelope.To, envelope.Subject, envelope.Template, envelope.Data)
	})
}
