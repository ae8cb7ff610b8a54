package queue

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestForwardTagsSourceQueue(t *testing.T) {
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Body: []byte("{}")}
	close(msgs)
	deliveries := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)

	go forward(msgs, BookingPaidQueue, deliveries, done)

	select {
	case d := <-deliveries:
		if d.Exchange != BookingPaidQueue {
			t.Fatalf("source queue = %q, want %q", d.Exchange, BookingPaidQueue)
		}
	case <-time.After(time.Second):
		t.Fatal("delivery never forwarded")
	}
}

func TestForwardReturnsWhenReceiverGone(t *testing.T) {
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Body: []byte("{}")}
	deliveries := make(chan amqp.Delivery) // nothing ever receives
	done := make(chan struct{})

	ret := make(chan struct{})
	go func() {
		forward(msgs, BookingPaidQueue, deliveries, done)
		close(ret)
	}()

	// The forwarder is blocked sending with no receiver; closing done
	// must still release it.
	close(done)
	select {
	case <-ret:
	case <-time.After(time.Second):
		t.Fatal("forwarder leaked after done was closed")
	}
}
