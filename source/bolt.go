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
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/Comcast/handpick/util"
)

// Bolt is a Source for the JSON documents stored as values in one
// bucket of a bbolt database.  Documents come out in key order.
type Bolt struct {
	Bucket string

	filename string
	db       *bolt.DB
}

// OpenBolt opens (or creates) the database file.
func OpenBolt(filename, bucket string) (*Bolt, error) {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(filename, 0644, opts)
	if err != nil {
		return nil, err
	}
	return &Bolt{
		Bucket:   bucket,
		filename: filename,
		db:       db,
	}, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) logf(format string, args ...interface{}) {
	util.Logf("Bolt "+s.filename+" "+format, args...)
}

// Put stores x as JSON at the given key.
func (s *Bolt) Put(key string, x any) error {
	js, err := json.Marshal(x)
	if err != nil {
		return err
	}
	s.logf("Put %s %s", key, js)
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(s.Bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), js)
	})
}

// Delete removes the document at the given key.
func (s *Bolt) Delete(key string) error {
	s.logf("Delete %s", key)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.Bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

type kv struct {
	key string
	val []byte
}

func (s *Bolt) Docs(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		// Values are only valid during the transaction, so copy them
		// out before decoding.
		kvs := make([]kv, 0, 32)
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(s.Bucket))
			if b == nil {
				s.logf("no bucket %q", s.Bucket)
				return nil
			}
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if v == nil {
					// Nested bucket.
					continue
				}
				kvs = append(kvs, kv{string(k), append([]byte(nil), v...)})
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
			return
		}

		s.logf("Docs found %d", len(kvs))

		for _, e := range kvs {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			doc, err := DecodeJSON(e.val)
			if err != nil {
				yield(nil, fmt.Errorf("bucket %q key %q: %w", s.Bucket, e.key, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
