package mqtt

import (
	"strings"
	"testing"
)

func TestPublishBadBroker(t *testing.T) {
	err := Publish(Options{Broker: "tcp://127.0.0.1:19999", Topic: "favpack/test"}, "hello")
	if err == nil {
		t.Fatal("expected error for unreachable broker")
	}
	if !strings.HasPrefix(err.Error(), "mqtt: connect") {
		t.Errorf("error = %v, want connect failure", err)
	}
}

func TestPublishBadScheme(t *testing.T) {
	err := Publish(Options{Broker: "not-a-url", ClientID: "test-client", Topic: "favpack/test"}, "hello")
	if err == nil {
		t.Fatal("expected error for invalid broker URL")
	}
}
