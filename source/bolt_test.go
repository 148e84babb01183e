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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/Comcast/handpick/pick"
)

func openTestBolt(t *testing.T, bucket string) *Bolt {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "docs.db"), bucket)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltDocs(t *testing.T) {
	s := openTestBolt(t, "docs")
	ctx := context.Background()

	require.NoError(t, s.Put("b", pick.M("y", 2, "x", 1)))
	require.NoError(t, s.Put("a", []any{"first"}))
	require.NoError(t, s.Put("c", 3))

	docs, err := Collect(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"first"}, pick.M("y", 2, "x", 1), 3}, docs)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Put("c", "replaced"))
	docs, err = Collect(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []any{pick.M("y", 2, "x", 1), "replaced"}, docs)
}

func TestBoltMissingBucket(t *testing.T) {
	s := openTestBolt(t, "nothing")
	docs, err := Collect(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, s.Delete("x"))
}

func TestBoltBadDocument(t *testing.T) {
	s := openTestBolt(t, "docs")
	require.NoError(t, s.Put("a", 1))
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("docs")).Put([]byte("b"), []byte("{"))
	})
	require.NoError(t, err)

	docs, err := Collect(context.Background(), s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `key "b"`)
	assert.Equal(t, []any{1}, docs)
}
