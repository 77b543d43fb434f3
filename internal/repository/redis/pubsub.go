package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShowingsPubSub fans out "seat state changed" notifications so other
// processes can drop warm per-showing state they hold locally.
type ShowingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewShowingsPubSub(rdb *redis.Client) *ShowingsPubSub {
	return &ShowingsPubSub{
		rdb:     rdb,
		channel: ChannelShowingsChanged(),
	}
}

type showingChangedMsg struct {
	Type      string `json:"type"`
	ShowingID int64  `json:"showing_id"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *ShowingsPubSub) PublishShowingChanged(ctx context.Context, showingID int64) error {
	msg := showingChangedMsg{
		Type:      "showing_changed",
		ShowingID: showingID,
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe delivers seat-state change notifications from every process to
// handler until ctx is cancelled. Undecodable payloads are dropped.
func (p *ShowingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, showingID int64)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if id, ok := decodeShowingChanged([]byte(m.Payload)); ok {
				handler(ctx, id)
			}
		}
	}
}

func decodeShowingChanged(payload []byte) (int64, bool) {
	var ev showingChangedMsg
	if err := json.Unmarshal(payload, &ev); err != nil || ev.ShowingID == 0 {
		return 0, false
	}

	return ev.ShowingID, true
}
