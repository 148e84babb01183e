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

package goja

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// InlineRequires generates new source code that replaces top-level
// require("name") statements with the code that the provider gives
// for those names.
//
// Libraries go through this function as they are provided, so a
// library can require another.  Only top-level statements of the
// exact form require("name") are replaced.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {

	p, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return "", err
	}

	type Required struct {
		// From and To are byte offsets of the statement in src.
		From, To int
		Name     string
	}

	requires := make([]Required, 0, 8)

	for _, s := range p.Body {
		exps, is := s.(*ast.ExpressionStatement)
		if !is {
			continue
		}

		call, is := exps.Expression.(*ast.CallExpression)
		if !is {
			continue
		}

		id, is := call.Callee.(*ast.Identifier)
		if !is {
			continue
		}
		if id.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}

		arg := call.ArgumentList[0]
		lit, is := arg.(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", arg)
		}

		// Idx values are 1-based.
		requires = append(requires, Required{
			From: int(exps.Idx0()) - 1,
			To:   int(exps.Idx1()) - 1,
			Name: string(lit.Value),
		})
	}

	if len(requires) == 0 {
		return src, nil
	}

	var acc strings.Builder
	last := 0
	for _, r := range requires {
		lib, err := provider(ctx, r.Name)
		if err != nil {
			return "", err
		}
		acc.WriteString(src[last:r.From])
		acc.WriteString(lib)
		acc.WriteString("\n")
		last = r.To
	}
	acc.WriteString(src[last:])

	return acc.String(), nil
}
