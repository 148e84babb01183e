// Package handpick picks nodes out of nested data.
//
// The traversal is in package 'pick'.  Package 'match' is a pattern
// matcher, and 'interpreters' compiles patterns, JavaScript, and a few
// other languages into predicates for pick.  Documents come from
// package 'source', and a command-line tool is in `cmd/handpick`.
package handpick
