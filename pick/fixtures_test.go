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

package pick

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// tuple is a sequence type distinct from []any so tests can select
// by type.
type tuple []any

// bytearray is a second byte slice type.
type bytearray []byte

// set is a Set with a fixed member order.
type set []any

func (s set) Members() []any {
	return s
}

// span is a Sequence of the ints in [lo,hi).
type span struct {
	lo, hi int
}

func (s span) Len() int {
	return s.hi - s.lo
}

func (s span) Index(i int) any {
	return s.lo + i
}

var (
	flat = tuple{62, 0.0, true, "food", "", nil, []any{}, "foo", M()}

	nestedList = []any{
		[]any{1, 2, 100.0},
		[]any{3, "Py", []any{M(), 4}, 5},
	}

	dictList = M(
		1, []any{M(), tuple{2, "3"}},
		4, []any{M(), []any{5, tuple{}}},
	)

	listTuple = []any{
		[]any{nil, tuple{tuple{1, 2, 3}, 3}, 0},
		tuple{"foo", "bar"},
	}

	nestedDict = M(
		"1", M(
			"dict", M("list", []any{}, "tuple", tuple{}),
			"list", []any{1, []any{2, []any{3, M()}}},
		),
		"2", M(
			"dict", M("list", []any{}, "tuple", tuple{}),
			"tuple", tuple{M(), []any{}, tuple{}},
		),
	)

	list5Levels = []any{
		[]any{
			[]any{
				bytearray("2"),
				[]any{[]any{"4"}, 3.5},
			},
			[]byte("1"),
		},
		"0",
		[]any{
			[]any{"2", []any{[]byte("3")}},
			"1",
			tuple{2},
		},
	}

	dict5Levels = M(
		"0_key1", "0_value1",
		"0_key2", M(
			"1_key1", M(
				"2_key1", "2_value1",
				"2_key2", M(
					"3_key1", M("4_key", "4_value"),
					"3_key2", set{"4_value2"},
				),
			),
			"1_key2", "1_value2",
		),
	)

	stringsData = []any{
		"foot",
		[]any{"", "foobar"},
		M("foo", "bar", "bar", "fool"),
		"good food",
	}

	sequences = tuple{
		[]any{[]any{"hand"}, []byte("pick"), tuple{42, []byte("hand")}},
		tuple{"3.14", tuple{1.414}, []any{"15", bytearray("pick")}},
	}

	seqsDicts = tuple{
		[]any{[]any{"hand"}, []byte("pick"), M(42, []byte("hand"))},
		tuple{"3.14", tuple{1.414}, M(tuple{"15"}, bytearray("pick"))},
	}

	collections = tuple{
		[]any{set{"hand"}, []byte("pick"), M(42, []byte("hand"))},
		tuple{"3.14", tuple{set{1.414}}, M(tuple{"15"}, bytearray("pick"))},
	}
)

func isEven(x any) (bool, error) {
	n, is := x.(int)
	if !is {
		return false, TypeMismatch.Errorf("%T %% 2", x)
	}
	return n%2 == 0, nil
}

func isPositive(x any) (bool, error) {
	f, is := number(x)
	if !is {
		return false, TypeMismatch.Errorf("%T > 0", x)
	}
	return 0 < f, nil
}

func palindromicInt(x any) (bool, error) {
	n, is := x.(int)
	if !is {
		return false, TypeMismatch.Errorf("%T is not an int", x)
	}
	s := []rune(strconv.Itoa(n))
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false, nil
		}
	}
	return true, nil
}

func firstItemPositive(x any) (bool, error) {
	first, err := Index(x, 0)
	if err != nil {
		return false, err
	}
	return isPositive(first)
}

func picked(t *testing.T, root any, opts ...Option) []any {
	t.Helper()
	got, err := Collect(Pick(root, opts...))
	require.NoError(t, err)
	return got
}
