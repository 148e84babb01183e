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
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/util"
)

type token struct {
	mqtt.Token
	err error
}

func (t *token) Wait() bool   { return true }
func (t *token) Error() error { return t.err }

type message struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *message) Topic() string   { return m.topic }
func (m *message) Payload() []byte { return m.payload }

// broker is an mqtt.Client that publishes canned messages to each
// subscription as soon as it is made.
type broker struct {
	mqtt.Client

	sync.Mutex
	connected    bool
	subErr       error
	canned       map[string][]string
	subscribed   []string
	unsubscribed []string
}

func (b *broker) IsConnected() bool {
	b.Lock()
	defer b.Unlock()
	return b.connected
}

func (b *broker) Connect() mqtt.Token {
	b.Lock()
	defer b.Unlock()
	b.connected = true
	return &token{}
}

func (b *broker) Subscribe(topic string, qos byte, h mqtt.MessageHandler) mqtt.Token {
	if b.subErr != nil {
		return &token{err: b.subErr}
	}
	b.Lock()
	b.subscribed = append(b.subscribed, topic)
	b.Unlock()
	go func() {
		for _, p := range b.canned[topic] {
			h(b, &message{topic: topic, payload: []byte(p)})
		}
	}()
	return &token{}
}

func (b *broker) Unsubscribe(topics ...string) mqtt.Token {
	b.Lock()
	defer b.Unlock()
	b.unsubscribed = append(b.unsubscribed, topics...)
	return &token{}
}

func TestParseTopic(t *testing.T) {
	topic, qos, err := parseTopic("a/b:1")
	require.NoError(t, err)
	assert.Equal(t, "a/b", topic)
	assert.Equal(t, byte(1), qos)

	topic, qos, err = parseTopic(" a/# ")
	require.NoError(t, err)
	assert.Equal(t, "a/#", topic)
	assert.Equal(t, byte(0), qos)

	_, _, err = parseTopic("a:x")
	assert.Error(t, err)
	_, _, err = parseTopic("a:3")
	assert.Error(t, err)
}

func TestMQTTDocs(t *testing.T) {
	b := &broker{
		canned: map[string][]string{
			"sensors": {`{"temp":20}`, `plain`, `[1]`},
		},
	}
	s := &MQTT{
		Client:      b,
		Topics:      "sensors:1",
		InjectTopic: true,
		Limit:       3,
	}

	docs, err := Collect(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []any{
		pick.M("temp", 20, "topic", "sensors"),
		"plain",
		[]any{1},
	}, docs)
	assert.True(t, b.IsConnected())
	assert.Equal(t, []string{"sensors"}, b.subscribed)
	assert.Equal(t, []string{"sensors"}, b.unsubscribed)
}

func TestMQTTCanceled(t *testing.T) {
	b := &broker{
		canned: map[string][]string{
			"a": {`1`},
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	docs, err := Collect(ctx, &MQTT{Client: b, Topics: "a,b"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []any{1}, docs)
	assert.Equal(t, []string{"a", "b"}, b.subscribed)
}

func TestMQTTSubscribeError(t *testing.T) {
	b := &broker{subErr: errors.New("denied")}
	_, err := Collect(context.Background(), &MQTT{Client: b, Topics: "a"})
	assert.EqualError(t, err, "denied")
	assert.Empty(t, b.unsubscribed)
}

func TestMQTTConnectionLostLogging(t *testing.T) {
	var buf bytes.Buffer
	defer func(l *log.Logger, on bool) {
		util.Logger, util.Logging = l, on
	}(util.Logger, util.Logging)
	util.Logger = log.New(&buf, "", 0)

	util.Logging = false
	connectionLost(nil, errors.New("gone"))
	assert.Equal(t, "", buf.String())

	util.Logging = true
	connectionLost(nil, errors.New("gone"))
	assert.Equal(t, "MQTT connection lost: gone\n", buf.String())
}
