// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package event is an in-process notification bus. Producers publish typed
// events; consumers subscribe by event type and receive them on a channel
// or through a callback.
package event

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EventQueueSize      = 20
	AsyncQueueSize      = 1000
	AsyncWorkerPoolSize = 4
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives events from the bus. Close must be idempotent.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

const (
	subscriberKindChannel = "in-memory"
	subscriberKindCustom  = "custom"
)

// channelSubscriber delivers events on a buffered channel. Deliver blocks
// while the buffer is full.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{
		ch: make(chan Event, buffer),
	}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	// Close waits for in-flight sends before closing the channel
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	c.ch <- evt
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

type subscription struct {
	sub  Subscriber
	kind string
}

// EventBus fans published events out to the subscribers of each type
type EventBus struct {
	logger      *slog.Logger
	metrics     *eventMetrics
	subscribers map[EventType]map[EventSubscriberId]subscription
	asyncQueue  chan Event
	stopCh      chan struct{}
	asyncWg     sync.WaitGroup
	mu          sync.RWMutex
	lastSubId   EventSubscriberId
	stopped     bool
}

// NewEventBus creates a new EventBus and starts its async worker pool
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		logger:      logger,
		subscribers: make(map[EventType]map[EventSubscriberId]subscription),
		asyncQueue:  make(chan Event, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if promRegistry != nil {
		e.metrics = &eventMetrics{}
		e.metrics.init(promRegistry)
	}
	for range AsyncWorkerPoolSize {
		e.asyncWg.Add(1)
		go e.asyncWorker()
	}
	return e
}

func (e *EventBus) asyncWorker() {
	defer e.asyncWg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case evt := <-e.asyncQueue:
			e.Publish(evt.Type, evt)
		}
	}
}

func (e *EventBus) addSubscriber(
	eventType EventType,
	sub Subscriber,
	kind string,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		sub.Close()
		return 0
	}
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]subscription)
	}
	e.subscribers[eventType][subId] = subscription{sub: sub, kind: kind}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType), kind).Inc()
	}
	return subId
}

// Subscribe returns a channel that receives events of the given type. The
// channel is closed by Unsubscribe or Stop. A stopped bus returns ID 0 and
// a closed channel.
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	chSub := newChannelSubscriber(EventQueueSize)
	subId := e.addSubscriber(eventType, chSub, subscriberKindChannel)
	return subId, chSub.ch
}

// SubscribeFunc calls handlerFunc for each event of the given type, in
// publish order, from a dedicated goroutine
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// RegisterSubscriber attaches a custom Subscriber implementation
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	return e.addSubscriber(eventType, sub, subscriberKindCustom)
}

// Unsubscribe stops delivery to a subscriber and closes it
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	evtTypeSubs := e.subscribers[eventType]
	item, ok := evtTypeSubs[subId]
	if ok {
		delete(evtTypeSubs, subId)
		if len(evtTypeSubs) == 0 {
			delete(e.subscribers, eventType)
		}
		if e.metrics != nil {
			e.metrics.subscribers.WithLabelValues(string(eventType), item.kind).Dec()
		}
	}
	e.mu.Unlock()
	if ok {
		item.sub.Close()
	}
}

// Publish delivers an event to every current subscriber of its type. A
// subscriber whose delivery fails is removed.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	type target struct {
		id   EventSubscriberId
		item subscription
	}
	e.mu.RLock()
	targets := make([]target, 0, len(e.subscribers[eventType]))
	for id, item := range e.subscribers[eventType] {
		targets = append(targets, target{id: id, item: item})
	}
	e.mu.RUnlock()
	for _, t := range targets {
		if err := deliver(t.item.sub, evt); err != nil {
			e.Unsubscribe(eventType, t.id)
			if e.metrics != nil {
				e.metrics.deliveryErrors.WithLabelValues(string(eventType), t.item.kind).Inc()
			}
			e.logger.Debug(
				"event delivery error",
				"component", "event",
				"type", eventType,
				"error", err,
			)
		}
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// PublishAsync queues an event for delivery by the worker pool and returns
// immediately. Ordering between async events is not preserved. It returns
// false if the bus is stopped or the queue is full.
func (e *EventBus) PublishAsync(eventType EventType, evt Event) bool {
	evt.Type = eventType
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return false
	}
	select {
	case e.asyncQueue <- evt:
		return true
	default:
		e.logger.Warn(
			"async event queue full, dropping event",
			"component", "event",
			"type", eventType,
		)
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(string(eventType), "async-dropped").Inc()
		}
		return false
	}
}

// Stop halts the worker pool and closes all subscribers. It is safe to call
// more than once; a stopped bus accepts no new subscribers.
func (e *EventBus) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]subscription)
	e.mu.Unlock()
	e.asyncWg.Wait()
	for _, evtTypeSubs := range subsCopy {
		for _, item := range evtTypeSubs {
			item.sub.Close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
