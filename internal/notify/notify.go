package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers a rendered report somewhere outside the process.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi sends to every notifier and returns all failures combined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// Skip stands in for a channel that is configured but switched off. It
// records that a message would have gone out and reports success. When Out
// is set the user also gets a one line notice there.
type Skip struct {
	Logger  *zap.Logger
	Channel string
	Out     io.Writer
}

func (s Skip) Send(ctx context.Context, title, text string) error {
	if s.Logger != nil {
		s.Logger.Info("notify_skipped",
			zap.String("channel", s.Channel),
			zap.String("title", title),
			zap.Int("bytes", len(text)),
		)
	}
	if s.Out != nil {
		fmt.Fprintf(s.Out, "[INFO] %s sending skipped in current mode.\n", channelName(s.Channel))
	}
	return nil
}

func channelName(c string) string {
	if c == "" {
		return "Notification"
	}
	return strings.ToUpper(c[:1]) + c[1:]
}
