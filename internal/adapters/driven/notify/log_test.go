package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink_Deliver(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(&buf)

	require.NoError(t, sink.Deliver(context.Background(), "first"))
	require.NoError(t, sink.Deliver(context.Background(), "second"))

	assert.Equal(t, "[ALERT] first\n[ALERT] second\n", buf.String())
}
