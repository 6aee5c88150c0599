package notify

import "testing"

func TestHub_PublishInSubscriptionOrder(t *testing.T) {
	var h Hub[int]
	var got []string
	h.Subscribe(func(v int) { got = append(got, "a") })
	cancel := h.Subscribe(func(v int) { got = append(got, "b") })
	h.Subscribe(func(v int) { got = append(got, "c") })

	h.Publish(1)
	cancel()
	cancel()
	h.Publish(2)

	want := []string{"a", "b", "c", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
}

func TestHub_ZeroValuePublish(t *testing.T) {
	var h Hub[string]
	h.Publish("nobody listening")
}
