package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/profilehub/apiserver/internal/mq"
)

func TestRenderWelcome(t *testing.T) {
	body, err := Render(TemplateWelcome, map[string]string{"FullName": "Ann Lee"})
	if err != nil {
		t.Fatalf("render welcome: %v", err)
	}
	if !strings.Contains(body, "Ann Lee") {
		t.Fatalf("welcome body missing recipient name:\n%s", body)
	}
}

func TestRenderResetPassword(t *testing.T) {
	body, err := Render(TemplateResetPassword, map[string]string{
		"FullName": "Ann Lee",
		"Token":    "123456",
		"URL":      "http://localhost/confirm",
	})
	if err != nil {
		t.Fatalf("render reset password: %v", err)
	}
	if !strings.Contains(body, "123456") {
		t.Fatalf("reset body missing recovery code:\n%s", body)
	}
	if !strings.Contains(body, "http://localhost/confirm") {
		t.Fatalf("reset body missing confirmation url:\n%s", body)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := Render("invoice", nil); err == nil {
		t.Fatal("expected an error for an unknown template")
	}
}

// channelBackend is an in-memory mq.Backend that hands published messages
// straight to the registered subscriber.
type channelBackend struct {
	handlers map[string]mq.Handler
	nextID   int
}

func newChannelBackend() *channelBackend {
	return &channelBackend{handlers: make(map[string]mq.Handler)}
}

func (b *channelBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.nextID++
	msg := mq.Message{ID: "msg-" + channel, Data: data, Attributes: attrs}
	if handler, ok := b.handlers[channel]; ok {
		if err := handler(ctx, msg); err != nil {
			return "", err
		}
	}
	return msg.ID, nil
}

func (b *channelBackend) Subscribe(_ context.Context, channel string, handler mq.Handler) error {
	b.handlers[channel] = handler
	return nil
}

func (b *channelBackend) Close() error { return nil }

type recordedMail struct {
	to       string
	subject  string
	template string
	data     map[string]string
}

type recordingMailer struct {
	sent []recordedMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, templateName string, data map[string]string) error {
	m.sent = append(m.sent, recordedMail{to: to, subject: subject, template: templateName, data: data})
	return nil
}

func TestQueueMailerRoundTrip(t *testing.T) {
	backend := newChannelBackend()
	queue := mq.New(backend)
	delivery := &recordingMailer{}

	worker := NewWorker(queue, delivery)
	if err := worker.Run(context.Background()); err != nil {
		t.Fatalf("worker run: %v", err)
	}

	sender := NewQueueMailer(queue)
	err := sender.Send(context.Background(), "ann@x.com", "Welcome!", TemplateWelcome, map[string]string{"FullName": "Ann Lee"})
	if err != nil {
		t.Fatalf("queue send: %v", err)
	}

	if len(delivery.sent) != 1 {
		t.Fatalf("expected 1 delivered mail, got %d", len(delivery.sent))
	}
	got := delivery.sent[0]
	if got.to != "ann@x.com" || got.subject != "Welcome!" || got.template != TemplateWelcome {
		t.Fatalf("unexpected delivery %+v", got)
	}
	if got.data["FullName"] != "Ann Lee" {
		t.Fatalf("template data lost in transit: %+v", got.data)
	}
}

func TestQueueMailerRejectsUnknownTemplate(t *testing.T) {
	backend := newChannelBackend()
	sender := NewQueueMailer(mq.New(backend))

	err := sender.Send(context.Background(), "ann@x.com", "Hi", "invoice", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown template")
	}
	if backend.nextID != 0 {
		t.Fatal("unknown template reached the queue")
	}
}

func TestWorkerDropsMalformedEnvelope(t *testing.T) {
	backend := newChannelBackend()
	queue := mq.New(backend)
	delivery := &recordingMailer{}

	worker := NewWorker(queue, delivery)
	if err := worker.Run(context.Background()); err != nil {
		t.Fatalf("worker run: %v", err)
	}

	// Publish garbage directly on the mail channel; the worker must not
	// error (which would requeue) and must not deliver anything.
	if _, err := queue.Publish(context.Background(), Channel, []byte("not json"), nil); err != nil {
		t.Fatalf("publish malformed payload: %v", err)
	}
	if len(delivery.sent) != 0 {
		t.Fatalf("malformed envelope was delivered: %+v", delivery.sent)
	}
}
