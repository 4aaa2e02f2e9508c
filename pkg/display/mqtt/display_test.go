package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	payload []byte
	qos     byte
	retain  bool
}

type fakePublisher struct {
	lock sync.Mutex
	msgs []published
}

func (p *fakePublisher) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	p.lock.Lock()
	p.msgs = append(p.msgs, published{topic: topic, payload: payload, qos: qos, retain: retain})
	p.lock.Unlock()
	return &paho.DummyToken{}
}

func TestFrameCodec(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)
	payload, err := EncodeFrame(Frame{Seq: 7, Time: at, Text: "1.1.2024 12:00:05\nLine written"})
	require.NoError(t, err)
	f, err := DecodeFrame(payload)
	require.NoError(t, err)
	require.Equal(t, uint64(7), f.Seq)
	require.True(t, at.Equal(f.Time))
	require.Equal(t, "1.1.2024 12:00:05\nLine written", f.Text)

	_, err = DecodeFrame([]byte{0xff, 0xff})
	require.True(t, errors.Is(err, ErrBadFrame))
	_, err = DecodeFrame(nil)
	require.True(t, errors.Is(err, ErrBadFrame))
}

func TestDisplayPublishes(t *testing.T) {
	pub := &fakePublisher{}
	d := NewWithPublisher(pub, "dev1")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Clock = func() time.Time { return at }

	require.NoError(t, d.ShowText("first"))
	require.NoError(t, d.ShowText("second"))
	require.Len(t, pub.msgs, 2)
	for n, msg := range pub.msgs {
		require.Equal(t, "sdlog/dev1/status", msg.topic)
		require.True(t, msg.retain)
		f, err := DecodeFrame(msg.payload)
		require.NoError(t, err)
		require.Equal(t, uint64(n), f.Seq)
	}

	d.announce()
	meta := pub.msgs[2]
	require.Equal(t, MetaTopic("dev1"), meta.topic)
	require.Equal(t, byte(1), meta.qos)
	var info map[string]string
	require.NoError(t, json.Unmarshal(meta.payload, &info))
	require.Equal(t, "dev1", info["id"])
}

func TestDisplayRunWithoutBroker(t *testing.T) {
	d := NewWithPublisher(&fakePublisher{}, "dev1")
	require.Error(t, d.Run(context.Background()))
}
