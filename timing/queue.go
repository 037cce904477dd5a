package timing

import "container/heap"

type queuedEvent struct {
	event Event
	seq   uint64
}

// eventHeap orders events by time, then by the order they were scheduled in
type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Time() != h[j].event.Time() {
		return h[i].event.Time() < h[j].event.Time()
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queuedEvent{}
	*h = old[:n-1]
	return item
}

// EventQueue is a time-ordered queue of events. It is not safe for concurrent use.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// Push adds an event to the event queue
func (q *EventQueue) Push(evt Event) {
	heap.Push(&q.events, queuedEvent{event: evt, seq: q.nextSeq})
	q.nextSeq++
}

// Pop returns the next earliest event
func (q *EventQueue) Pop() Event {
	return heap.Pop(&q.events).(queuedEvent).event
}

// Peek returns the event in front of the queue without removing it from the queue
func (q *EventQueue) Peek() Event {
	return q.events[0].event
}

// Len returns the number of event in the queue
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// RemoveFunc drops every queued event that matches and returns how many were dropped
func (q *EventQueue) RemoveFunc(match func(Event) bool) int {
	kept := q.events[:0]
	for _, queued := range q.events {
		if !match(queued.event) {
			kept = append(kept, queued)
		}
	}

	removed := len(q.events) - len(kept)
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = queuedEvent{}
	}
	q.events = kept
	heap.Init(&q.events)

	return removed
}
