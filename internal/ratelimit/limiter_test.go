package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := New(1.0, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("Expected request %d within burst to be allowed", i+1)
		}
	}
	if l.Allow() {
		t.Error("Expected request past burst to be denied")
	}
}

func TestLimiter_Refills(t *testing.T) {
	l := New(100.0, 1)

	if !l.Allow() {
		t.Fatal("Expected first request to be allowed")
	}
	if l.Allow() {
		t.Fatal("Expected bucket to be empty")
	}

	time.Sleep(20 * time.Millisecond)
	if !l.Allow() {
		t.Error("Expected bucket to refill over time")
	}
}

func TestLimiter_TokensCapped(t *testing.T) {
	l := New(1000.0, 2)
	time.Sleep(10 * time.Millisecond)

	if tokens := l.Tokens(); tokens > 2 {
		t.Errorf("Tokens = %g, want capped at burst", tokens)
	}
}

func TestKeyedLimiter_IsolatesKeys(t *testing.T) {
	k := NewKeyed(0.0001, 2)

	if !k.Allow("10.0.0.1") || !k.Allow("10.0.0.1") {
		t.Fatal("Expected burst for first key")
	}
	if k.Allow("10.0.0.1") {
		t.Error("Expected first key to be limited")
	}
	if !k.Allow("10.0.0.2") {
		t.Error("Expected second key to have its own bucket")
	}
}

func TestKeyedLimiter_Reset(t *testing.T) {
	k := NewKeyed(0.0001, 1)

	if !k.Allow("ip") {
		t.Fatal("Expected first request allowed")
	}
	if k.Allow("ip") {
		t.Fatal("Expected limit hit")
	}

	k.Reset("ip")
	if !k.Allow("ip") {
		t.Error("Expected fresh bucket after reset")
	}
}

func TestNewPerHour(t *testing.T) {
	k := NewPerHour(3)

	for i := 0; i < 3; i++ {
		if !k.Allow("ip") {
			t.Fatalf("Expected request %d of 3 to be allowed", i+1)
		}
	}
	if k.Allow("ip") {
		t.Error("Expected fourth request in the hour to be denied")
	}
	if got := k.Remaining("ip"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}
