package test

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tempnode/app"
	"github.com/kilianp07/tempnode/config"
	"github.com/kilianp07/tempnode/infra/mqtt"
	"github.com/kilianp07/tempnode/infra/sensor"
	"github.com/kilianp07/tempnode/test/util"
)

func e2eConfig(broker string) *config.Config {
	cfg := &config.Config{
		MQTT: mqtt.Config{
			Broker:   broker,
			ClientID: "e2e-node",
		},
		Sensor: config.SensorConfig{
			Mode: config.SensorModeSim,
			Sim:  sensor.SimConfig{Seed: 1},
		},
	}
	cfg.MQTT.SetDefaults()
	cfg.Sensor.SetDefaults()
	cfg.Agent.SetDefaults()
	cfg.Metrics.SetDefaults()
	return cfg
}

func newWatcher(t *testing.T, broker, topic string) (paho.Client, <-chan string) {
	t.Helper()
	payloads := make(chan string, 32)
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-watcher")
	cli := paho.NewClient(opts)
	token := cli.Connect()
	require.True(t, token.Wait())
	require.NoError(t, token.Error())
	token = cli.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		payloads <- string(msg.Payload())
	})
	require.True(t, token.Wait())
	require.NoError(t, token.Error())
	t.Cleanup(func() { cli.Disconnect(100) })
	return cli, payloads
}

func collect(t *testing.T, payloads <-chan string, n int, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case p := <-payloads:
			got = append(got, p)
		case <-deadline:
			t.Fatalf("received %d of %d payloads before timeout", len(got), n)
		}
	}
	return got
}

func TestE2E_MeasureCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	cfg := e2eConfig(broker)
	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	runCtx, stopSvc := context.WithCancel(ctx)
	defer stopSvc()
	go func() { _ = svc.Run(runCtx) }()

	cli, payloads := newWatcher(t, broker, cfg.MQTT.ResponseTopic)

	token := cli.Publish(cfg.MQTT.CommandTopic, 1, false, []byte("measure:3,100"))
	require.True(t, token.Wait())
	require.NoError(t, token.Error())

	got := collect(t, payloads, 3, 15*time.Second)
	for i, payload := range got {
		fields := strings.Split(payload, ",")
		require.Len(t, fields, 3, "payload %q", payload)
		assert.Equal(t, fmt.Sprintf("%d", 2-i), fields[0], "remaining counts down")
		assert.Contains(t, fields[1], ".", "temperature has decimals")
	}
}

func TestE2E_RejectedCommandKeepsAgentAlive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	cfg := e2eConfig(broker)
	cfg.MQTT.ClientID = "e2e-node-2"
	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	runCtx, stopSvc := context.WithCancel(ctx)
	defer stopSvc()
	go func() { _ = svc.Run(runCtx) }()

	cli, payloads := newWatcher(t, broker, cfg.MQTT.ResponseTopic)

	for _, raw := range []string{"blink:1,1", "measure:0,500", "measure:1,0"} {
		token := cli.Publish(cfg.MQTT.CommandTopic, 1, false, []byte(raw))
		require.True(t, token.Wait())
		require.NoError(t, token.Error())
	}

	got := collect(t, payloads, 1, 15*time.Second)
	assert.Equal(t, "0", strings.Split(got[0], ",")[0])
}

// freeAddr reserves an ephemeral port for the metrics endpoint.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	return fmt.Sprintf(":%d", l.Addr().(*net.TCPAddr).Port)
}

func TestE2E_PrometheusExposesSampleCount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	cfg := e2eConfig(broker)
	cfg.MQTT.ClientID = "e2e-node-3"
	cfg.Metrics.PrometheusEnabled = true
	cfg.Metrics.PrometheusPort = freeAddr(t)
	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	runCtx, stopSvc := context.WithCancel(ctx)
	defer stopSvc()
	go func() { _ = svc.Run(runCtx) }()

	cli, payloads := newWatcher(t, broker, cfg.MQTT.ResponseTopic)

	token := cli.Publish(cfg.MQTT.CommandTopic, 1, false, []byte("measure:2,50"))
	require.True(t, token.Wait())
	require.NoError(t, token.Error())

	collect(t, payloads, 2, 15*time.Second)

	metricsURL := fmt.Sprintf("http://127.0.0.1%s/metrics", cfg.Metrics.PrometheusPort)
	waitCtx, cancelWait := context.WithTimeout(ctx, util.MetricTimeout)
	defer cancelWait()
	require.NoError(t, util.WaitForMetric(waitCtx, metricsURL, "samples_published_total 2"))
}
