package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// Ensure LogSink implements the interface.
var _ driven.NotificationSink = (*LogSink)(nil)

// LogSink writes alerts to a writer instead of sending them.
type LogSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLogSink creates a sink writing to out.
func NewLogSink(out io.Writer) *LogSink {
	return &LogSink{out: out}
}

// Deliver writes the message prefixed with [ALERT].
func (s *LogSink) Deliver(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("log sink: %d bytes", len(message))
	_, err := fmt.Fprintf(s.out, "[ALERT] %s\n", message)
	return err
}
