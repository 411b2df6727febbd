package compiler

import "regexp"

// eachRe matches the `item in collection` loop shape. The collection part is
// opaque expression text and may be arbitrarily complex.
var eachRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(.+?)\s*$`)

// parseEach splits an each-directive value into its loop variable and
// collection expression. A value not matching the `item in collection` shape
// reports false and the caller leaves the directive unapplied.
func parseEach(value string) (name, expr string, ok bool) {
	m := eachRe.FindStringSubmatch(value)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
