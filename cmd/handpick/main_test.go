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

package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Comcast/handpick/interpreters"
	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/source"
)

func runWith(t *testing.T, stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	return filename
}

func TestRun(t *testing.T) {
	tests := []struct {
		title string
		stdin string
		args  []string
		want  string
	}{
		{
			title: "pattern",
			stdin: `{"a":{"type":"door","id":1}} [{"type":"door"},{"type":"window"}]`,
			args:  []string{"-p", `{"type":"door"}`},
			want:  "{\"type\":\"door\",\"id\":1}\n{\"type\":\"door\"}\n",
		},
		{
			title: "everything",
			stdin: `[1,[2]]`,
			want:  "1\n[2]\n2\n",
		},
		{
			title: "no collections",
			stdin: `[1,[2]]`,
			args:  []string{"-collections=false"},
			want:  "1\n2\n",
		},
		{
			title: "dict keys",
			stdin: `{"a":1}`,
			args:  []string{"-dict-keys"},
			want:  "\"a\"\n1\n",
		},
		{
			title: "strings",
			stdin: `["ab"]`,
			args:  []string{"-strings", "-collections=false"},
			want:  "\"a\"\n\"b\"\n",
		},
		{
			title: "values for key",
			stdin: `{"id":1,"x":{"id":2,"y":3}}`,
			args:  []string{"-key", "id,y"},
			want:  "1\n2\n3\n",
		},
		{
			title: "depth",
			stdin: `[[1]] {"a":[1]} 3`,
			args:  []string{"-depth"},
			want:  "1\n1\n0\n",
		},
		{
			title: "javascript",
			stdin: `[null,{"a":{"b":1}}]`,
			args:  []string{"-lang", "js", "-p", "x => x.a.b"},
			want:  "{\"a\":{\"b\":1}}\n",
		},
		{
			title: "yaml from stdin",
			stdin: "a: [1, x]\n",
			args:  []string{"-f", "yaml", "-lang", "type", "-p", "int,string"},
			want:  "1\n\"x\"\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			got, _, err := runWith(t, tc.stdin, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRunFile(t *testing.T) {
	filename := writeFile(t, "data.yaml", "a: [1, 2]\n---\nb: 3\n")
	got, _, err := runWith(t, "", "-lang", "type", "-p", "int", filename)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", got)

	_, _, err = runWith(t, "", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunQueryFile(t *testing.T) {
	qfile := writeFile(t, "q.yaml", "lang: literal\npredicate: 2\ncollections: false\n")

	got, _, err := runWith(t, `[1,2,[2]]`, "-q", qfile)
	require.NoError(t, err)
	assert.Equal(t, "2\n2\n", got)

	got, _, err = runWith(t, `[1,2,[2]]`, "-q", qfile, "-collections=true", "-p", "[2]")
	require.NoError(t, err)
	assert.Equal(t, "[2]\n", got)

	qfile = writeFile(t, "q.yaml", "predicate: {\"n\": \"?\"}\n")
	got, _, err = runWith(t, `[{"n":1},{"m":2}]`, "-q", qfile)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n", got)

	_, _, err = runWith(t, ``, "-q", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunStrict(t *testing.T) {
	_, _, err := runWith(t, `[null,{"a":{"b":1}}]`, "-strict", "-lang", "js", "-p", "x => x.a.b")
	assert.ErrorIs(t, err, pick.ErrTypeMismatch)
}

func TestRunBolt(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "docs.db")
	s, err := source.OpenBolt(filename, "events")
	require.NoError(t, err)
	require.NoError(t, s.Put("a", pick.M("n", 1)))
	require.NoError(t, s.Put("b", pick.M("n", 2)))
	require.NoError(t, s.Close())

	got, _, err := runWith(t, "", "-bolt", filename, "-bucket", "events", "-key", "n")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", got)
}

func TestRunBench(t *testing.T) {
	got, stderr, err := runWith(t, `[1]`, "-bench", "3", "-p", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\n", got)
	assert.Contains(t, stderr, "3 iterations")
}

func TestRunErrors(t *testing.T) {
	_, _, err := runWith(t, ``, "-lang", "cobol", "-p", "x")
	assert.ErrorIs(t, err, interpreters.ErrUnknownLanguage)

	_, _, err = runWith(t, ``, "a.json", "b.json")
	assert.Error(t, err)

	_, _, err = runWith(t, ``, "-f", "toml")
	assert.Error(t, err)

	_, _, err = runWith(t, `[1,`)
	assert.Error(t, err)

	_, _, err = runWith(t, ``, "-nope")
	assert.Error(t, err)

	_, stderr, err := runWith(t, ``, "-h")
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, stderr, "-bolt")
}
