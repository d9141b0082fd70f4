package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("peer-a", nil, ConnInfo{ConnID: "c1", PeerID: "peer-a"})
	if hub.ClientCount("peer-a") != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.RemoveClient("peer-a", nil)
	if hub.ClientCount("peer-a") != 0 {
		t.Fatalf("expected room to be removed")
	}
}

func TestHubRoomsAreIndependent(t *testing.T) {
	hub := NewHub()

	hub.AddClient("peer-a", nil, ConnInfo{ConnID: "c1"})
	if hub.ClientCount("peer-b") != 0 {
		t.Fatalf("expected peer-b room to be empty")
	}
}
