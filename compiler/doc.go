// Package compiler turns aero template documents into render programs.
//
// A template is an HTML document with brace-delimited interpolations,
// directive attributes (each, if/else-if/else, props, slot, and their data-
// prefixed synonyms), slot elements, component-reference tags, and embedded
// script blocks. Compilation is a pure pipeline:
//
//	Parse    splits out the build-time script and client script blocks,
//	         leaving a byte-faithful script-free template.
//	Tokenize lexes text and attribute values into literal and interpolation
//	         segments, brace-aware through strings and comments.
//	Compile  walks the template tree and emits a Program: the statement tree
//	         the runtime executes, plus the deterministic source text of the
//	         equivalent render function.
//
// Expressions are opaque to this package: they are captured as text and
// spliced into the program unanalyzed; the runtime evaluates them at render
// time. All compiler components are pure functions over their inputs and are
// safe for concurrent use.
package compiler
