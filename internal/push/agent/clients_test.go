package agent

import "testing"

func TestClientRegistry_OpenAndClose(t *testing.T) {
	r := NewClientRegistry("https://tichat.gg")

	c := r.Open("https://tichat.gg/feed")
	if r.Count() != 1 {
		t.Errorf("Expected 1 client, got %d", r.Count())
	}

	r.Close(c.ID)
	if r.Count() != 0 {
		t.Errorf("Expected 0 clients after close, got %d", r.Count())
	}
}

func TestClientRegistry_FindSameOrigin(t *testing.T) {
	r := NewClientRegistry("https://tichat.gg")

	r.Open("https://example.com/elsewhere")
	if r.FindSameOrigin() != nil {
		t.Error("Expected no same-origin client")
	}

	own := r.Open("https://tichat.gg/post/7")
	found := r.FindSameOrigin()
	if found == nil || found.ID != own.ID {
		t.Error("Expected the tichat window to be found")
	}
}

func TestClientRegistry_RelativeURLsAreSameOrigin(t *testing.T) {
	r := NewClientRegistry("https://tichat.gg")

	r.Open("/game/3")
	if r.FindSameOrigin() == nil {
		t.Error("Expected relative URL to count as same origin")
	}
}

func TestClientRegistry_ClaimAll(t *testing.T) {
	r := NewClientRegistry("https://tichat.gg")

	// window opened before the agent existed
	old := r.Open("https://tichat.gg/")
	if old.Claimed() {
		t.Error("Expected new window to start unclaimed")
	}

	r.ClaimAll()
	if !old.Claimed() {
		t.Error("Expected pre-existing window to be claimed")
	}
}

func TestClient_PostDropsWhenFull(t *testing.T) {
	r := NewClientRegistry("https://tichat.gg")
	c := r.Open("/")

	// nobody drains the inbox; posting must never block
	for i := 0; i < 100; i++ {
		c.Post(Message{Type: MessageNotificationClick})
	}

	if len(c.Inbox()) != cap(c.inbox) {
		t.Errorf("Expected a full inbox, got %d/%d", len(c.Inbox()), cap(c.inbox))
	}
}
