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

package predicates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Comcast/handpick/match"
	"github.com/Comcast/handpick/pick"
	. "github.com/Comcast/handpick/util/testutil"
)

func TestPattern(t *testing.T) {
	doc := MustJSON(`{"events":[{"type":"door","open":true},{"type":"temp","c":20},{"type":"door","open":false}]}`)

	got, err := pick.Collect(pick.Pick(doc, pick.Where(Pattern(MustJSON(`{"type":"door"}`)))))
	require.NoError(t, err)
	assert.Equal(t, []any{
		pick.M("type", "door", "open", true),
		pick.M("type", "door", "open", false),
	}, got)

	got, err = pick.Collect(pick.Pick(doc, pick.Where(Pattern(MustJSON(`{"c":"?n"}`)))))
	require.NoError(t, err)
	assert.Equal(t, []any{pick.M("type", "temp", "c", 20)}, got)
}

func TestPatternComposes(t *testing.T) {
	doors := Pattern(MustJSON(`{"type":"door"}`))
	open := Pattern(MustJSON(`{"open":true}`))
	doc := MustJSON(`[{"type":"door","open":true},{"type":"door","open":false},{"open":true}]`)

	got, err := pick.Collect(pick.Pick(doc, pick.Where(doors.And(open.Not()))))
	require.NoError(t, err)
	assert.Equal(t, []any{pick.M("type", "door", "open", false)}, got)
}

func TestPatternErrors(t *testing.T) {
	bad := Pattern(MustJSON(`{"?k":1,"b":2}`))
	_, err := pick.Collect(pick.Pick([]any{pick.M("b", 2)}, pick.Where(bad)))
	var bpv *match.BadPropertyVariable
	assert.ErrorAs(t, err, &bpv)

	m := &match.Matcher{}
	p := PatternWith(m, MustJSON(`{"?k":1}`))
	_, err = p.Test(pick.M("a", 1))
	assert.ErrorAs(t, err, &bpv)
}

func TestCronStrings(t *testing.T) {
	got, err := pick.Collect(pick.Pick(
		[]any{"*/5 * * * *", "0 0 1 1 *", "nope", 3, "@daily"},
		pick.Where(CronStrings)))
	require.NoError(t, err)
	assert.Equal(t, []any{"*/5 * * * *", "0 0 1 1 *", "@daily"}, got)
}
