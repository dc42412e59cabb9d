package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultClientID is used when Options.ClientID is empty.
const DefaultClientID = "favpack"

// Options describes one publish target.
type Options struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool
	Username string
	Password string
}

// Publish connects to an MQTT broker, publishes message to opts.Topic,
// and disconnects. Each invocation creates a fresh connection.
func Publish(opts Options, message string) error {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	co := pahomqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second)

	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}

	client := pahomqtt.NewClient(co)
	tok := client.Connect()
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(opts.Topic, opts.QoS, opts.Retain, message)
	if !pub.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
