package email

import (
	"context"

	"go.uber.org/zap"

	"leadgen-service/internal/domain"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders submission notifications and hands them to a Sender.
// Failures are logged and reported as false; they never reach the caller.
type Notifier struct {
	renderer *Renderer
	sender   Sender
	from     string
	to       string
	logger   *zap.Logger
}

func NewNotifier(renderer *Renderer, sender Sender, from, to string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{renderer: renderer, sender: sender, from: from, to: to, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, note domain.Notification) bool {
	msg, err := n.renderer.Render(note)
	if err != nil {
		n.logger.Error("render notification", zap.String("kind", string(note.Kind)), zap.Error(err))
		return false
	}
	msg.From = n.from
	msg.To = n.to
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("send notification", zap.String("kind", string(note.Kind)), zap.String("to", msg.To), zap.Error(err))
		return false
	}
	return true
}

// LogSender writes messages to the log instead of sending them. It is the
// default when no provider key is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email",
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("replyTo", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
