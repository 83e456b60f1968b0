package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
	closed   bool
}

func (s *recordingSubscriber) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *recordingSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSubscriber) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestHubDeliversOnlyToRecipient(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := &recordingSubscriber{}
	bob := &recordingSubscriber{}
	hub.Register(1, alice)
	hub.Register(2, bob)
	waitFor(t, func() bool { return hub.Connected(1) == 1 && hub.Connected(2) == 1 })

	if err := hub.Notify(1, Notification{Type: "achievement.unlocked", Data: map[string]string{"code": "first-lesson"}}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	waitFor(t, func() bool { return alice.received() == 1 })
	if bob.received() != 0 {
		t.Fatalf("bob should not receive alice's notification")
	}

	var n Notification
	if err := json.Unmarshal(alice.payloads[0], &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.Type != "achievement.unlocked" || n.SentAt.IsZero() {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestHubDropsFailingSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	broken := &recordingSubscriber{fail: true}
	hub.Register(5, broken)
	waitFor(t, func() bool { return hub.Connected(5) == 1 })

	hub.Broadcast(5, []byte(`{}`))
	waitFor(t, func() bool { return hub.Connected(5) == 0 })
	broken.mu.Lock()
	defer broken.mu.Unlock()
	if !broken.closed {
		t.Fatalf("failing subscriber should be closed")
	}
}

func TestHubCloseDisconnectsEveryone(t *testing.T) {
	hub := NewHub()
	sub := &recordingSubscriber{}
	hub.Register(9, sub)
	waitFor(t, func() bool { return hub.Connected(9) == 1 })

	hub.Close()
	waitFor(t, func() bool { return hub.Connected(9) == 0 })
	hub.Close()
	hub.Broadcast(9, []byte(`{}`))
}
