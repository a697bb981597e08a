package mqttbridge

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrConnectTimeout is returned when the broker does not answer in time.
var ErrConnectTimeout = errors.New("mqtt connect timed out")

// MessageHandler receives messages on a subscribed topic.
type MessageHandler func(topic string, payload []byte)

// Client is the subset of an MQTT client the bridge uses.
type Client interface {
	Publish(topic string, retained bool, payload []byte) error
	Subscribe(topic string, handler MessageHandler) error
	Disconnect()
}

// Config configures the MQTT connection and topic layout.
type Config struct {
	// BrokerURL is the broker address, e.g. tcp://localhost:1883 or
	// ssl://broker:8883.
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// TLSSkipVerify disables certificate checks for ssl:// brokers.
	TLSSkipVerify bool

	// TopicPrefix is the first topic level.
	TopicPrefix string

	QoS      byte
	Retained bool

	ConnectTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "hap-go",
		TopicPrefix:    "hap",
		QoS:            1,
		Retained:       true,
		ConnectTimeout: 10 * time.Second,
	}
}

// PahoClient is a Client backed by the Eclipse Paho MQTT client.
type PahoClient struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
}

// NewPahoClient connects to the broker.
func NewPahoClient(config Config) (*PahoClient, error) {
	u, err := url.Parse(config.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid broker URL: %w", err)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.BrokerURL)
	opts.SetClientID(config.ClientID)
	opts.SetAutoReconnect(true)
	if config.Username != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	if u.Scheme == "ssl" || u.Scheme == "mqtts" || u.Scheme == "tls" {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: config.TLSSkipVerify})
	}
	if config.TopicPrefix != "" {
		opts.SetWill(config.TopicPrefix+"/status", "offline", config.QoS, true)
	}

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("%w: %s", ErrConnectTimeout, config.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	p := &PahoClient{client: c, qos: config.QoS, timeout: timeout}
	if config.TopicPrefix != "" {
		if err := p.Publish(config.TopicPrefix+"/status", true, []byte("online")); err != nil {
			c.Disconnect(250)
			return nil, err
		}
	}
	return p, nil
}

func (p *PahoClient) wait(token mqtt.Token, op string) error {
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt %s: timed out", op)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt %s: %w", op, err)
	}
	return nil
}

// Publish publishes payload and waits for the broker to acknowledge it.
func (p *PahoClient) Publish(topic string, retained bool, payload []byte) error {
	return p.wait(p.client.Publish(topic, p.qos, retained, payload), "publish "+topic)
}

// Subscribe subscribes to topic.
func (p *PahoClient) Subscribe(topic string, handler MessageHandler) error {
	token := p.client.Subscribe(topic, p.qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	return p.wait(token, "subscribe "+topic)
}

// Disconnect closes the connection after pending work is done.
func (p *PahoClient) Disconnect() {
	p.client.Disconnect(250)
}

var _ Client = (*PahoClient)(nil)
