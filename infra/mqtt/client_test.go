package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tempnode/core/sensor"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErr   error
	opts         *paho.ClientOptions
	connected    bool
	subTopic     string
	subQoS       byte
	subCallback  paho.MessageHandler
	pubTopic     string
	pubQoS       byte
	pubPayload   []byte
	publishErr   error
	disconnected bool
}

func (f *fakeClient) IsConnected() bool { return f.connected }
func (f *fakeClient) Connect() paho.Token {
	if f.connectErr != nil {
		return fakeToken{err: f.connectErr}
	}
	f.connected = true
	if f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return fakeToken{}
}
func (f *fakeClient) IsConnectionOpen() bool { return f.connected }
func (f *fakeClient) Disconnect(uint)        { f.disconnected = true }
func (f *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	f.pubTopic = topic
	f.pubQoS = qos
	f.pubPayload = payload.([]byte)
	return fakeToken{err: f.publishErr}
}
func (f *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	f.subTopic = topic
	f.subQoS = qos
	f.subCallback = cb
	return fakeToken{}
}
func (f *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return fakeToken{}
}
func (f *fakeClient) Unsubscribe(...string) paho.Token        { return fakeToken{} }
func (f *fakeClient) AddRoute(string, paho.MessageHandler)    {}
func (f *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 2 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func withFakeClient(t *testing.T, f *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
		f.opts = opts
		return f
	}
	t.Cleanup(func() { newMQTTClient = orig })
}

func testConfig() Config {
	cfg := Config{Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	return cfg
}

func TestNewClient_SubscribesCommandTopicOnConnect(t *testing.T) {
	fake := &fakeClient{}
	withFakeClient(t, fake)

	var received []string
	cli, err := NewClient(testConfig(), func(payload string) {
		received = append(received, payload)
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultCommandTopic, fake.subTopic)
	assert.Equal(t, byte(2), fake.subQoS)
	require.NotNil(t, fake.subCallback)

	fake.subCallback(nil, fakeMessage{topic: fake.subTopic, payload: []byte("measure:5,1000")})
	assert.Equal(t, []string{"measure:5,1000"}, received)

	cli.Close()
	assert.True(t, fake.disconnected)
}

func TestNewClient_ConnectError(t *testing.T) {
	fake := &fakeClient{connectErr: errors.New("broker unreachable")}
	withFakeClient(t, fake)

	_, err := NewClient(testConfig(), nil)
	assert.Error(t, err)
}

func TestClient_Publish(t *testing.T) {
	fake := &fakeClient{}
	withFakeClient(t, fake)

	cli, err := NewClient(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, cli.Publish("t", []byte("payload"), 1))
	assert.Equal(t, "t", fake.pubTopic)
	assert.Equal(t, byte(1), fake.pubQoS)
	assert.Equal(t, []byte("payload"), fake.pubPayload)
}

func TestReadingPublisher_PublishesEncodedPayload(t *testing.T) {
	fake := &fakeClient{}
	withFakeClient(t, fake)

	cfg := testConfig()
	cli, err := NewClient(cfg, nil)
	require.NoError(t, err)

	pub, err := NewReadingPublisher(cli, cfg)
	require.NoError(t, err)

	r := sensor.Reading{Remaining: 1, Temperature: 23.456, Uptime: 2 * time.Second}
	require.NoError(t, pub.Publish(r))
	assert.Equal(t, DefaultResponseTopic, fake.pubTopic)
	assert.Equal(t, byte(2), fake.pubQoS)
	assert.Equal(t, "1,23.46,2000", string(fake.pubPayload))
}

func TestReadingPublisher_PropagatesPublishError(t *testing.T) {
	fake := &fakeClient{publishErr: errors.New("not delivered")}
	withFakeClient(t, fake)

	cfg := testConfig()
	cli, err := NewClient(cfg, nil)
	require.NoError(t, err)

	pub, err := NewReadingPublisher(cli, cfg)
	require.NoError(t, err)

	err = pub.Publish(sensor.Reading{})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Broker = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.QoS = map[string]byte{"command": 3}
	assert.Error(t, bad.Validate())
}
