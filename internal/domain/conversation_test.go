package domain

import "testing"

func TestPairKeyFor(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want string
	}{
		{"ordered", 3, 7, "3:7"},
		{"reversed yields same key", 7, 3, "3:7"},
		{"large ids", 1000001, 42, "42:1000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairKeyFor(tt.a, tt.b); got != tt.want {
				t.Errorf("PairKeyFor(%d, %d) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestConversationSlots(t *testing.T) {
	c := &Conversation{
		Participant1ID:   10,
		Participant1Kind: RoleTrainer,
		Participant2ID:   20,
		Participant2Kind: RoleUser,
		Unread1:          3,
		Unread2:          5,
	}

	if got := c.SlotOf(10); got != 1 {
		t.Errorf("SlotOf(10) = %d, want 1", got)
	}
	if got := c.SlotOf(20); got != 2 {
		t.Errorf("SlotOf(20) = %d, want 2", got)
	}
	if got := c.SlotOf(99); got != 0 {
		t.Errorf("SlotOf(99) = %d, want 0", got)
	}

	peerID, peerKind := c.Peer(10)
	if peerID != 20 || peerKind != RoleUser {
		t.Errorf("Peer(10) = (%d, %s), want (20, user)", peerID, peerKind)
	}

	if got := c.UnreadFor(20); got != 5 {
		t.Errorf("UnreadFor(20) = %d, want 5", got)
	}
	if got := c.UnreadColumn(10); got != "unread1" {
		t.Errorf("UnreadColumn(10) = %q, want unread1", got)
	}
}
