package services

import (
	"fmt"
	"testing"
	"time"

	"wabridge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeMessage(id string, ts time.Time) domain.IncomingMessage {
	return domain.IncomingMessage{
		ID:        id,
		ChatJID:   "15551234567@s.whatsapp.net",
		SenderJID: "15551234567@s.whatsapp.net",
		PushName:  "Test Sender",
		Text:      "hello",
		Timestamp: ts,
	}
}

func TestIncomingBufferSince(t *testing.T) {
	buf := NewIncomingBuffer(10)
	base := time.Unix(1_700_000_000, 0)

	buf.Add(makeMessage("a", base))
	buf.Add(makeMessage("b", base.Add(10*time.Second)))
	buf.Add(makeMessage("c", base.Add(20*time.Second)))

	t.Run("zero cursor returns everything", func(t *testing.T) {
		msgs := buf.Since(0)
		require.Len(t, msgs, 3)
		assert.Equal(t, "a", msgs[0].ID)
		assert.Equal(t, "c", msgs[2].ID)
	})

	t.Run("cursor is exclusive", func(t *testing.T) {
		msgs := buf.Since(base.Unix())
		require.Len(t, msgs, 2)
		assert.Equal(t, "b", msgs[0].ID)
	})

	t.Run("cursor past newest returns nothing", func(t *testing.T) {
		assert.Empty(t, buf.Since(base.Add(time.Minute).Unix()))
	})
}

func TestIncomingBufferEvictsOldest(t *testing.T) {
	buf := NewIncomingBuffer(3)
	base := time.Unix(1_700_000_000, 0)

	for i := 0; i < 5; i++ {
		buf.Add(makeMessage(fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second)))
	}

	assert.Equal(t, 3, buf.Len())

	msgs := buf.Since(0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m4", msgs[2].ID)
}
