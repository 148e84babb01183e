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
	"iter"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Comcast/handpick/util"
)

// WebSocket is a Source for JSON messages heard on a WebSocket.
//
// Each non-empty message is one document.  Messages that aren't JSON
// are logged and skipped.  The stream ends when the server closes the
// connection normally or ctx is done.
type WebSocket struct {
	URL string

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

func NewWebSocket(url string) *WebSocket {
	return &WebSocket{
		URL: url,
	}
}

func (s *WebSocket) Docs(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		d := s.Dialer
		if d == nil {
			d = websocket.DefaultDialer
		}

		util.Logf("WebSocket connect %s", s.URL)
		conn, _, err := d.DialContext(ctx, s.URL, nil)
		if err != nil {
			yield(nil, err)
			return
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				conn.Close()
			}
		}()

		for {
			_, bs, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				yield(nil, err)
				return
			}
			if len(bs) == 0 {
				continue
			}
			util.Logf("WebSocket heard %s", bs)

			doc, err := DecodeJSON(bs)
			if err != nil {
				util.Logf("WebSocket ignoring %q: %s", bs, err)
				continue
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
