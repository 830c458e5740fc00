// Package notification delivers booking lifecycle messages over email and SMS
// channels, best-effort. Delivery failures are logged and swallowed; they are
// never surfaced to the lifecycle operations that trigger them.
package notification

import (
	"context"
	"fmt"
	"log/slog"
)

// Channel identifies a delivery mechanism.
type Channel string

const (
	// ChannelEmail delivers to an email address.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers to a phone number.
	ChannelSMS Channel = "sms"
)

// Message is a single per-recipient, per-channel delivery task.
type Message struct {
	Channel   Channel
	Recipient string
	Subject   string
	Body      string
}

// Sender performs the actual delivery for one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a batch of messages out to the registered channel senders.
// Each message is attempted independently: a failed email never suppresses an
// SMS for the same recipient, and vice versa.
type Dispatcher struct {
	senders map[Channel]Sender
	logger  *slog.Logger
}

// NewDispatcher constructs a dispatcher over the supplied channel senders.
func NewDispatcher(senders map[Channel]Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(map[Channel]Sender, len(senders))
	for channel, sender := range senders {
		if sender != nil {
			copied[channel] = sender
		}
	}
	return &Dispatcher{senders: copied, logger: logger}
}

// Dispatch delivers every message in the batch best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []Message) {
	if d == nil {
		return
	}
	for _, msg := range batch {
		if msg.Recipient == "" {
			continue
		}
		sender, ok := d.senders[msg.Channel]
		if !ok {
			d.logger.WarnContext(ctx, "no sender registered for channel",
				"channel", string(msg.Channel), "recipient", msg.Recipient)
			continue
		}
		if err := sender.Send(ctx, msg); err != nil {
			d.logger.ErrorContext(ctx, "notification delivery failed",
				"channel", string(msg.Channel), "recipient", msg.Recipient,
				"subject", msg.Subject, "error", err)
		}
	}
}

// LogSender writes messages to the log instead of delivering them. It stands
// in for real email/SMS transport when none is configured, mirroring the demo
// behavior operators see before wiring credentials.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.logger == nil {
		return fmt.Errorf("notification: log sender not configured")
	}
	s.logger.InfoContext(ctx, "notification",
		"channel", string(msg.Channel),
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
