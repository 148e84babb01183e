/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package source

import (
	"context"
	"fmt"
	"iter"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/util"
)

// MQTT is a Source for messages published to MQTT topics.
//
// Payloads that are JSON become documents.  Other payloads become
// strings.
type MQTT struct {
	Client mqtt.Client

	// Topics is a comma-separated list of TOPIC or TOPIC:QOS.
	Topics string

	// InjectTopic adds a "topic" entry to mapping documents.
	InjectTopic bool

	// Limit, when positive, ends the stream after that many
	// documents.  Otherwise the stream ends when ctx is done.
	Limit int

	// Buffer is the number of messages that can wait for the
	// consumer.  When the buffer is full, incoming messages are
	// dropped.
	Buffer int
}

// NewMQTTClient makes a client for the given broker URL (for example
// "tcp://localhost:1883").
func NewMQTTClient(broker, clientID string) mqtt.Client {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(10 * time.Second)
	opts.OnConnectionLost = connectionLost
	return mqtt.NewClient(opts)
}

func connectionLost(_ mqtt.Client, err error) {
	util.Logf("MQTT connection lost: %s", err)
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0, nil
	}
	var qos byte
	if _, err := fmt.Sscanf(s[i+1:], "%d", &qos); err != nil || 2 < qos {
		return "", 0, fmt.Errorf("bad QoS in topic %q", s)
	}
	return s[:i], qos, nil
}

// inbound makes a document from a message.
func (s *MQTT) inbound(topic string, payload []byte) any {
	x, err := DecodeJSON(payload)
	if err != nil {
		util.Logf("MQTT couldn't JSON-parse payload: %s", payload)
		return string(payload)
	}
	if m, is := x.(pick.Map); is && s.InjectTopic {
		x = m.Set("topic", topic)
	}
	return x
}

func (s *MQTT) Docs(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if !s.Client.IsConnected() {
			util.Logf("MQTT connecting")
			if t := s.Client.Connect(); t.Wait() && t.Error() != nil {
				yield(nil, t.Error())
				return
			}
		}

		var (
			in     = make(chan any, s.Buffer)
			done   = make(chan struct{})
			topics = make([]string, 0, 2)
		)
		defer close(done)

		handler := func(_ mqtt.Client, msg mqtt.Message) {
			x := s.inbound(msg.Topic(), msg.Payload())
			select {
			case <-done:
			case in <- x:
			default:
				if 0 < s.Buffer {
					util.Logf("MQTT dropping message on %s", msg.Topic())
					return
				}
				select {
				case <-done:
				case in <- x:
				}
			}
		}

		defer func() {
			if 0 < len(topics) {
				s.Client.Unsubscribe(topics...)
			}
		}()

		for _, ts := range strings.Split(s.Topics, ",") {
			topic, qos, err := parseTopic(ts)
			if err != nil {
				yield(nil, err)
				return
			}
			if topic == "" {
				continue
			}
			util.Logf("MQTT subscribing to %s (%d)", topic, qos)
			if t := s.Client.Subscribe(topic, qos, handler); t.Wait() && t.Error() != nil {
				yield(nil, t.Error())
				return
			}
			topics = append(topics, topic)
		}

		for n := 0; s.Limit <= 0 || n < s.Limit; n++ {
			select {
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			case x := <-in:
				if !yield(x, nil) {
					return
				}
			}
		}
	}
}
