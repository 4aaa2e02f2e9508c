package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/sdlog/pkg/comm/mqtt"
	"github.com/robotalks/sdlog/pkg/display"
	mqttdisplay "github.com/robotalks/sdlog/pkg/display/mqtt"
	fx "github.com/robotalks/sdlog/pkg/framework"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("SDLOG_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func loggerID(topic string) string {
	return strings.TrimSuffix(strings.TrimSuffix(strings.TrimPrefix(topic, mqttdisplay.TopicRoot),
		mqttdisplay.StatusSuffix), mqttdisplay.MetaSuffix)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(mqttdisplay.TopicRoot+"+"+mqttdisplay.MetaSuffix, func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: gone", loggerID(topic))
			return
		}
		log.Printf("%s: %s", loggerID(topic), string(payload))
	})
	q.Sub(mqttdisplay.TopicRoot+"+"+mqttdisplay.StatusSuffix, func(topic string, payload []byte) {
		frame, err := mqttdisplay.DecodeFrame(payload)
		if err != nil {
			log.Printf("%s: %v", loggerID(topic), err)
			return
		}
		log.Printf("%s #%d at %s\n%s", loggerID(topic), frame.Seq,
			frame.Time.Format("2006-01-02 15:04:05"), display.Render(frame.Text))
	})
	if err = q.ConnectAndWait(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	runner := fx.NewRunner().HandleSignals()
	<-runner.Context.Done()
}
