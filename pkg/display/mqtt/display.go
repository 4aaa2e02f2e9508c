// Package mqtt implements a display publishing frames to an MQTT broker,
// so a fleet of loggers can be watched from one place.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/sdlog/pkg/comm/mqtt"
)

// Topic layout, relative to the broker URL prefix.
const (
	TopicRoot    = "sdlog/"
	StatusSuffix = "/status"
	MetaSuffix   = "/meta"
)

// ErrBadFrame indicates a payload isn't a status frame.
var ErrBadFrame = errors.New("bad status frame")

// StatusTopic is the topic frames of device id are published to.
func StatusTopic(id string) string {
	return TopicRoot + id + StatusSuffix
}

// MetaTopic is the retained topic describing device id.
func MetaTopic(id string) string {
	return TopicRoot + id + MetaSuffix
}

// Frame is one shown text.
type Frame struct {
	Seq  uint64
	Time time.Time
	Text string
}

// EncodeFrame encodes f as a protobuf Struct.
func EncodeFrame(f Frame) ([]byte, error) {
	ts, err := ptypes.TimestampProto(f.Time)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"seq":  {Kind: &structpb.Value_NumberValue{NumberValue: float64(f.Seq)}},
			"time": {Kind: &structpb.Value_StringValue{StringValue: ptypes.TimestampString(ts)}},
			"text": {Kind: &structpb.Value_StringValue{StringValue: f.Text}},
		},
	})
}

// DecodeFrame decodes a payload produced by EncodeFrame.
func DecodeFrame(payload []byte) (f Frame, err error) {
	var s structpb.Struct
	if err = proto.Unmarshal(payload, &s); err != nil {
		return f, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	text, ok := s.Fields["text"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return f, fmt.Errorf("%w: no text", ErrBadFrame)
	}
	f.Text = text.StringValue
	f.Seq = uint64(s.Fields["seq"].GetNumberValue())
	if ts := s.Fields["time"].GetStringValue(); ts != "" {
		if f.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return f, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
	}
	return f, nil
}

// Display publishes frames to StatusTopic(ID) and announces itself with
// a retained message on MetaTopic(ID). The broker clears the
// announcement if the connection is lost.
type Display struct {
	ID    string
	Meta  map[string]string
	Clock func() time.Time

	queue *mqtt.Queue
	pub   mqtt.Publisher
	lock  sync.Mutex
	seq   uint64
}

// New creates a Display connected to brokerURL when Run.
func New(brokerURL, id string) (*Display, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(id), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("sdlog:" + id)
	}
	d := NewWithPublisher(nil, id)
	d.queue = mqtt.NewQueue(opts, topicPrefix)
	d.queue.OnConnect = func(*mqtt.Queue) { d.announce() }
	d.pub = d.queue
	return d, nil
}

// NewWithPublisher creates a Display over an existing publisher.
func NewWithPublisher(pub mqtt.Publisher, id string) *Display {
	host, _ := os.Hostname()
	return &Display{
		ID:    id,
		Meta:  map[string]string{"id": id, "host": host},
		Clock: time.Now,
		pub:   pub,
	}
}

// ShowText implements display.Display.
func (d *Display) ShowText(text string) error {
	d.lock.Lock()
	f := Frame{Seq: d.seq, Time: d.Clock(), Text: text}
	d.seq++
	d.lock.Unlock()
	payload, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return mqtt.Wait(d.pub.PubWith(StatusTopic(d.ID), payload, 0, true))
}

// Run implements framework.Runnable. The connection is kept until ctx
// is done and the announcement is withdrawn on exit.
func (d *Display) Run(ctx context.Context) error {
	if d.queue == nil {
		return errors.New("display has no broker connection")
	}
	if err := d.queue.ConnectAndWait(); err != nil {
		glog.Warningf("mqtt display %s: %v, frames are not published", d.ID, err)
	}
	<-ctx.Done()
	mqtt.Wait(d.pub.PubWith(MetaTopic(d.ID), nil, 1, true))
	d.queue.Close()
	return ctx.Err()
}

func (d *Display) announce() {
	meta, err := json.Marshal(d.Meta)
	if err != nil {
		glog.Errorf("mqtt display %s meta: %v", d.ID, err)
		return
	}
	d.pub.PubWith(MetaTopic(d.ID), meta, 1, true)
}
