package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier pushes transition events onto a topic through a buffered
// inbox goroutine. Publishing never blocks the request handler: if the inbox
// is full the event is dropped and logged. Delivery errors are logged, never
// raised — a lost notification must not roll back a state transition.
type KafkaNotifier struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewKafkaNotifier(brokers []string, topic string, buf int) *KafkaNotifier {
	n := &KafkaNotifier{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
	go n.loop()
	return n
}

func (n *KafkaNotifier) loop() {
	for m := range n.inbox {
		if err := n.w.WriteMessages(context.Background(), m); err != nil {
			log.Printf("notify: kafka write: %v", err)
		}
	}
	_ = n.w.Close()
	close(n.closeCh)
}

func (n *KafkaNotifier) Notify(_ context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal: %v", err)
		return
	}
	// key = request id，同一请求的事件保持分区内有序
	m := kafka.Message{Key: []byte(ev.RequestID), Value: b, Time: ev.OccurredAt}
	select {
	case n.inbox <- m:
	default:
		log.Printf("notify: inbox full, dropping %s for request %s", ev.EventType, ev.RequestID)
	}
}

// Close flushes the inbox and waits for the writer to shut down.
func (n *KafkaNotifier) Close() {
	close(n.inbox)
	<-n.closeCh
}
