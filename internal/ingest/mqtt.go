package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const messageTimeout = 10 * time.Second

// MQTTSubscriber feeds device readings published on channels/<id>/feeds
// into the pipeline.
type MQTTSubscriber struct {
	client    mqtt.Client
	topic     string
	processor Processor
	timeout   time.Duration
}

func NewMQTTSubscriber(cfg *config.Config, processor Processor) *MQTTSubscriber {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	s := &MQTTSubscriber{
		topic:     cfg.MQTTTopic,
		processor: processor,
		timeout:   messageTimeout,
	}
	// Subscriptions do not survive a clean-session reconnect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if err := s.subscribe(c); err != nil {
			slog.Error("mqtt resubscribe failed", "topic", s.topic, "error", err.Error())
		}
	})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker; the on-connect hook subscribes.
func (s *MQTTSubscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	slog.Info("mqtt subscriber started", "topic", s.topic)
	return nil
}

func (s *MQTTSubscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *MQTTSubscriber) subscribe(c mqtt.Client) error {
	token := c.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		if err := s.HandleMessage(msg.Topic(), msg.Payload()); err != nil {
			slog.Error("mqtt message rejected", "topic", msg.Topic(), "error", err.Error())
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.topic, token.Error())
	}
	return nil
}

// HandleMessage decodes one published reading and processes it.
func (s *MQTTSubscriber) HandleMessage(topic string, payload []byte) error {
	channelID, err := ChannelFromTopic(topic)
	if err != nil {
		return err
	}

	var data dto.FeedData
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err = s.processor.Process(ctx, channelID, data.Reading(), SourceMQTT)
	return err
}

// ChannelFromTopic extracts the channel id from channels/<id>/feeds.
func ChannelFromTopic(topic string) (uint, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "channels" || parts[2] != "feeds" {
		return 0, fmt.Errorf("unexpected topic %q", topic)
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("bad channel id in topic %q", topic)
	}
	return uint(id), nil
}
