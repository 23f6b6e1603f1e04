package mqtt

import (
	"github.com/kilianp07/tempnode/core/sensor"
)

// MessagePublisher sends a raw payload to a topic. Implemented by Client.
type MessagePublisher interface {
	Publish(topic string, payload []byte, qos byte) error
}

// ReadingPublisher adapts a MessagePublisher and a Codec to the sampling
// Publisher interface: one encoded message per reading on the response topic.
type ReadingPublisher struct {
	pub   MessagePublisher
	topic string
	qos   byte
	codec Codec
}

// NewReadingPublisher creates a publisher for the configured response topic.
func NewReadingPublisher(pub MessagePublisher, cfg Config) (*ReadingPublisher, error) {
	codec, err := NewCodec(cfg.Format)
	if err != nil {
		return nil, err
	}
	return &ReadingPublisher{
		pub:   pub,
		topic: cfg.ResponseTopic,
		qos:   cfg.QoSFor("response"),
		codec: codec,
	}, nil
}

// Publish encodes the reading and sends it.
func (p *ReadingPublisher) Publish(r sensor.Reading) error {
	payload, err := p.codec.Encode(r)
	if err != nil {
		return err
	}
	return p.pub.Publish(p.topic, payload, p.qos)
}
