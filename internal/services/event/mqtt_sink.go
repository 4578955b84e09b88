package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/rabbitmq"
)

const DefaultTopicTemplate = "advisor/events/{type}"

// MQTTSink publishes events as JSON at QoS 1.
type MQTTSink struct {
	publisher rabbitmq.IPublisher
	topicTmpl string
}

func NewMQTTSink(p rabbitmq.IPublisher, topicTmpl string) *MQTTSink {
	if strings.TrimSpace(topicTmpl) == "" {
		topicTmpl = DefaultTopicTemplate
	}
	return &MQTTSink{publisher: p, topicTmpl: topicTmpl}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Topic(evt messages.AdvisoryEvent) string {
	return strings.NewReplacer("{type}", evt.EventType, "{session}", evt.SessionID).Replace(s.topicTmpl)
}

func (s *MQTTSink) Send(_ context.Context, evt messages.AdvisoryEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("mqtt sink: marshal: %w", err)
	}
	return s.publisher.PublishTo(s.Topic(evt), 1, false, b)
}

func (s *MQTTSink) Connected() bool { return s.publisher.Connected() }
