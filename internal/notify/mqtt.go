package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTSink publishes events as JSON to <topic>/<partition>.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// Publisher is the part of mqtt.Client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// DialMQTT connects to broker, retrying with backoff while it is unreachable.
func DialMQTT(broker, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("energy-usage-db-" + time.Now().Format("150405")).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)

	connect := func() error {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		return nil
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.RetryNotify(connect, bo, func(err error, next time.Duration) {
		log.Warn().Err(err).Str("broker", broker).Dur("retry_in", next).Msg("mqtt connect failed")
	}); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTSink{client: client, topic: topic}, nil
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Publish(ctx context.Context, ev Event) error {
	return publishJSON(ctx, s.client, s.topic+"/"+string(ev.Partition), ev)
}

func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}

func publishJSON(ctx context.Context, p Publisher, topic string, ev Event) error {
	payload, err := sonic.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	token := p.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
