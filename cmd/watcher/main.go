// Command watcher follows entry change notifications on the MQTT broker and
// logs each one.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/config"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	broker := config.MQTTBroker()
	if broker == "" {
		log.Fatal().Msg("MQTT_BROKER is not set")
	}

	opts := mqtt.NewClientOptions().AddBroker(broker)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var ev notify.Event
		if err := sonic.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("undecodable event")
			return
		}
		rec := ev.Record
		log.Info().
			Str("id", ev.ID).
			Str("partition", string(ev.Partition)).
			Str("table", rec.EnergyType).
			Str("meter", rec.MeterID).
			Str("observed_at", rec.ObservedAt.Format(domain.TimestampLayout)).
			Str("from", audit.FormatValue(rec.OldValue)).
			Str("to", audit.FormatValue(rec.NewValue)).
			Str("by", rec.Actor.Email).
			Msg("entry changed")
	}

	topic := config.MQTTTopic() + "/#"
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", topic).Msg("watcher running; Ctrl+C to stop")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
