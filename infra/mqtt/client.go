package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/tempnode/infra/logger"
)

// Default topics of the stock firmware deployment.
const (
	DefaultCommandTopic  = "iot/assignment2/topics/subscribe"
	DefaultResponseTopic = "iot/assignment2/topics/publish"
)

// Config defines the connection parameters for the Paho MQTT client. Format
// selects the response payload codec, "csv" or "json".
type Config struct {
	Broker        string          `json:"broker"`
	ClientID      string          `json:"client_id"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	CommandTopic  string          `json:"command_topic"`
	ResponseTopic string          `json:"response_topic"`
	Format        string          `json:"format"`
	UseTLS        bool            `json:"use_tls"`
	ClientCert    string          `json:"client_cert"`
	ClientKey     string          `json:"client_key"`
	CABundle      string          `json:"ca_bundle"`
	QoS           map[string]byte `json:"qos"`
	LWTTopic      string          `json:"lwt_topic"`
	LWTPayload    string          `json:"lwt_payload"`
	LWTQoS        byte            `json:"lwt_qos"`
	LWTRetain     bool            `json:"lwt_retain"`
	TLSConfig     *tls.Config     `json:"-"`
}

// SetDefaults applies the stock firmware topics and QoS 2, the delivery
// guarantee the original device used for both directions.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "tempnode"
	}
	if c.CommandTopic == "" {
		c.CommandTopic = DefaultCommandTopic
	}
	if c.ResponseTopic == "" {
		c.ResponseTopic = DefaultResponseTopic
	}
	if c.Format == "" {
		c.Format = FormatCSV
	}
	if c.QoS == nil {
		c.QoS = map[string]byte{"command": 2, "response": 2}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.Format != FormatCSV && c.Format != FormatJSON {
		return fmt.Errorf("unknown payload format %q", c.Format)
	}
	for purpose, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("qos for %s out of range: %d", purpose, q)
		}
	}
	return nil
}

// QoSFor returns the configured QoS for a purpose, defaulting to 2.
func (c Config) QoSFor(purpose string) byte {
	if q, ok := c.QoS[purpose]; ok {
		return q
	}
	return 2
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// NewClientOptions builds paho client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// CommandHandler receives the raw payload of every message on the command
// topic.
type CommandHandler func(payload string)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client wraps the Paho client: it keeps the command topic subscribed across
// reconnects and publishes response payloads.
type Client struct {
	cli pahoClient
	log logger.Logger
}

// NewClient connects to the broker and subscribes onCommand to the command
// topic. The subscription is re-established on every reconnect.
func NewClient(cfg Config, onCommand CommandHandler) (*Client, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	c := &Client{log: log}

	opts.OnConnect = func(cli paho.Client) {
		log.Infof("MQTT connected")
		if onCommand == nil {
			return
		}
		qos := cfg.QoSFor("command")
		token := cli.Subscribe(cfg.CommandTopic, qos, func(_ paho.Client, msg paho.Message) {
			onCommand(string(msg.Payload()))
		})
		if token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// Subscribe registers a callback for a topic and waits for the broker ack.
func (c *Client) Subscribe(topic string, qos byte, cb paho.MessageHandler) error {
	token := c.cli.Subscribe(topic, qos, cb)
	token.Wait()
	return token.Error()
}

// Publish sends a payload to the given topic and waits for completion.
func (c *Client) Publish(topic string, payload []byte, qos byte) error {
	token := c.cli.Publish(topic, qos, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.cli.IsConnected() {
		c.cli.Disconnect(250)
		c.log.Infof("MQTT disconnected")
	}
}
