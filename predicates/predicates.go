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

// Package predicates has pick predicates that need more than the
// pick package itself.
package predicates

import (
	"github.com/gorhill/cronexpr"

	"github.com/Comcast/handpick/match"
	"github.com/Comcast/handpick/pick"
)

// Pattern makes a Predicate that is true for nodes the pattern
// matches (see package match).
//
// Pattern errors (a bad pattern, not a failed match) are returned by
// the Predicate and so end the traversal.
func Pattern(pattern any, opts ...pick.PredicateOption) *pick.Predicate {
	return PatternWith(match.DefaultMatcher, pattern, opts...)
}

// PatternWith is Pattern with the given Matcher.
func PatternWith(m *match.Matcher, pattern any, opts ...pick.PredicateOption) *pick.Predicate {
	return pick.New(func(x any) (bool, error) {
		bss, err := m.Matches(pattern, x)
		if err != nil {
			return false, err
		}
		return 0 < len(bss), nil
	}, opts...)
}

// CronStrings is true for strings that parse as cron expressions.
var CronStrings = pick.IsType[string]().And(pick.NoError(func(x any) (*cronexpr.Expression, error) {
	return cronexpr.Parse(x.(string))
}))
