package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/tempnode/config"
	"github.com/kilianp07/tempnode/infra/mqtt"
)

var (
	measureAmount  int
	measureDelayMS int
	measureTimeout time.Duration
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Send a measure command and print the readings",
	RunE:  runMeasure,
}

func init() {
	measureCmd.Flags().IntVarP(&measureAmount, "amount", "n", 5, "number of samples")
	measureCmd.Flags().IntVarP(&measureDelayMS, "delay", "d", 1000, "delay between samples in milliseconds")
	measureCmd.Flags().DurationVarP(&measureTimeout, "timeout", "t", 30*time.Second, "how long to wait for the readings")
	rootCmd.AddCommand(measureCmd)
}

func runMeasure(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = fmt.Sprintf("%s-measure-%s", mqttCfg.ClientID, uuid.NewString()[:8])

	cli, err := mqtt.NewClient(mqttCfg, nil)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer cli.Close()

	readings := make(chan string, measureAmount)
	err = cli.Subscribe(mqttCfg.ResponseTopic, mqttCfg.QoSFor("response"), func(_ paho.Client, msg paho.Message) {
		select {
		case readings <- string(msg.Payload()):
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	payload := fmt.Sprintf("measure:%d,%d", measureAmount, measureDelayMS)
	if err := cli.Publish(mqttCfg.CommandTopic, []byte(payload), mqttCfg.QoSFor("command")); err != nil {
		return fmt.Errorf("publish command: %w", err)
	}

	timer := time.NewTimer(measureTimeout)
	defer timer.Stop()
	for received := 0; received < measureAmount; received++ {
		select {
		case r := <-readings:
			fmt.Println(r)
		case <-timer.C:
			return fmt.Errorf("timed out after %d of %d readings", received, measureAmount)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
