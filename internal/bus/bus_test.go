package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpulse/docpulse/internal/config"
	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

// setupBus starts a miniredis server and returns a Bus connected to it.
func setupBus(t *testing.T) (*miniredis.Miniredis, *Bus) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewWithClient(client, observability.NopLogger())
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	_, b := setupBus(t)

	receivers, err := b.Publish(context.Background(), domain.PageCountUpdate{
		ClientID:   "c1",
		TotalPages: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), receivers)
}

func TestBus_PublishSubscribeRoundTrip(t *testing.T) {
	_, b := setupBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, domain.Topics()...)
	require.NoError(t, err)
	defer sub.Close()

	sent := domain.DetectionUpdate{
		ClientID: "c1",
		Status:   domain.DetectionAnalyzing,
		Progress: 0.1,
		Message:  "2 pages detected",
	}
	receivers, err := b.Publish(ctx, sent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), receivers)

	select {
	case msg := <-sub.Events():
		assert.Equal(t, domain.TopicDetectionUpdates, msg.Channel)
		ev, err := Decode([]byte(msg.Payload))
		require.NoError(t, err)
		assert.Equal(t, sent, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus message")
	}
}

func TestBus_SubscriberOnlySeesSubscribedTopics(t *testing.T) {
	_, b := setupBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, domain.TopicPageResults)
	require.NoError(t, err)
	defer sub.Close()

	_, err = b.Publish(ctx, domain.DetectionUpdate{ClientID: "c1", Status: domain.DetectionAnalyzing})
	require.NoError(t, err)
	_, err = b.Publish(ctx, domain.PageResultUpdate{
		ClientID:   "c1",
		PageNumber: 1,
		Result:     domain.PageResult{Page: 1, Orientation: domain.OrientationHorizontal},
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Events():
		assert.Equal(t, domain.TopicPageResults, msg.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus message")
	}
}

func TestNew_UnreachableRedis(t *testing.T) {
	_, err := New(config.RedisConfig{Addr: "127.0.0.1:1"}, observability.NopLogger())
	assert.Error(t, err)
}
