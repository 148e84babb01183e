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
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies the failures a test function might report
// when it is given a node it can't handle.
type ErrorKind uint8

const (
	// TypeMismatch: the operation doesn't apply to the node's type.
	TypeMismatch ErrorKind = iota

	// InvalidValue: right type, unacceptable value (for example,
	// parsing "abc" as an integer).
	InvalidValue

	// NotFound: a key or index is absent.
	NotFound

	// MissingCapability: the node lacks a method or attribute.
	MissingCapability
)

var errorKindNames = [...]string{
	TypeMismatch:      "type mismatch",
	InvalidValue:      "invalid value",
	NotFound:          "not found",
	MissingCapability: "missing capability",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

type kindError struct {
	kind ErrorKind
}

func (e *kindError) Error() string {
	return e.kind.String()
}

var (
	ErrTypeMismatch      error = &kindError{TypeMismatch}
	ErrInvalidValue      error = &kindError{InvalidValue}
	ErrNotFound          error = &kindError{NotFound}
	ErrMissingCapability error = &kindError{MissingCapability}

	// ErrUnsupportedOperand is returned by And, Or, and Not when an
	// operand is neither a Matcher nor a test function.
	ErrUnsupportedOperand = errors.New("unsupported operand for predicate composition")
)

var sentinels = [...]error{
	TypeMismatch:      ErrTypeMismatch,
	InvalidValue:      ErrInvalidValue,
	NotFound:          ErrNotFound,
	MissingCapability: ErrMissingCapability,
}

// Err returns the sentinel error for the kind.
func (k ErrorKind) Err() error {
	if int(k) < len(sentinels) {
		return sentinels[k]
	}
	return &kindError{k}
}

// Errorf makes an error of this kind.  The result wraps the kind's
// sentinel, so errors.Is works.
func (k ErrorKind) Errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", k.Err(), fmt.Sprintf(format, args...))
}

// ErrorKindOf finds the kind of the given error.
//
// Errors wrapping one of the sentinels have that sentinel's kind.  A
// *strconv.NumError is an InvalidValue.  Other errors have no kind.
func ErrorKindOf(err error) (ErrorKind, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return InvalidValue, true
	}
	return 0, false
}

// kindSet is a bit set of ErrorKinds.
type kindSet uint16

func kinds(ks ...ErrorKind) kindSet {
	var s kindSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s kindSet) has(k ErrorKind) bool {
	return s&(1<<k) != 0
}

func (s kindSet) list() []ErrorKind {
	var acc []ErrorKind
	for k := ErrorKind(0); k < 16; k++ {
		if s.has(k) {
			acc = append(acc, k)
		}
	}
	return acc
}

var defaultSuppressed = kinds(TypeMismatch, InvalidValue, NotFound, MissingCapability)
