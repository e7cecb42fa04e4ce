package main

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

type outcome struct {
	acked   bool
	nacked  bool
	requeue bool
}

type recordingAck struct{ got map[uint64]*outcome }

func (a *recordingAck) Ack(tag uint64, _ bool) error {
	a.got[tag] = &outcome{acked: true}
	return nil
}

func (a *recordingAck) Nack(tag uint64, _ bool, requeue bool) error {
	a.got[tag] = &outcome{nacked: true, requeue: requeue}
	return nil
}

func (a *recordingAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type failingMailer struct{}

func (failingMailer) Send(context.Context, string, string, string, string) error {
	return errors.New("mailgun down")
}

func TestConsume_AckNackRequeue(t *testing.T) {
	ack := &recordingAck{got: map[uint64]*outcome{}}
	h := &application.EventHandler{Mailer: failingMailer{}}

	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"type":"bmi.recorded","bmi":{"id":1}}`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`not json`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte(`{"type":"user.registered","user":{"id":1,"email":"a@x.com"}}`)}
	close(msgs)

	consume(context.Background(), msgs, h, helpers.NewDiscardLogger())

	assert.Equal(t, &outcome{acked: true}, ack.got[1])
	assert.Equal(t, &outcome{nacked: true, requeue: false}, ack.got[2])
	assert.Equal(t, &outcome{nacked: true, requeue: true}, ack.got[3])
}

func TestConsume_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		consume(ctx, make(chan amqp.Delivery), &application.EventHandler{}, helpers.NewDiscardLogger())
		close(done)
	}()
	<-done
}

func TestWaitForShutdown_ConsumerStoppedByBroker(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	done := make(chan struct{})
	go func() {
		consume(context.Background(), msgs, &application.EventHandler{}, helpers.NewDiscardLogger())
		close(done)
	}()
	close(msgs)

	err := waitForShutdown(context.Background(), done, time.Second)
	assert.ErrorIs(t, err, errDeliveriesClosed)
}

func TestWaitForShutdown_Signal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	close(done)
	assert.NoError(t, waitForShutdown(ctx, done, time.Second))

	// a consumer that never finishes is abandoned after the grace period
	start := time.Now()
	assert.NoError(t, waitForShutdown(ctx, make(chan struct{}), 10*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
}
