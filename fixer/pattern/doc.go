/*
Package pattern compiles selector patterns that describe shapes in a concrete
syntax tree.

# Overview

A pattern is written in the lib2to3 pattern language. It is lexed by a table
driven state machine (see internal.go), parsed by a recursive descent parser
and then analyzed once, so a compiled *Pattern never changes and can be shared
between goroutines.

# Syntax

	pattern      := alternatives
	alternatives := sequence ('|' sequence)*
	sequence     := unit+
	unit         := [NAME '='] ['not'] atom [repeat]
	atom         := '(' alternatives ')'
	              | '[' alternatives ']'
	              | NAME ['<' alternatives '>']
	              | 'any' ['<' alternatives '>']
	              | STRING
	repeat       := '*' | '+' | '{' INT [',' [INT]] '}'

Elements:

  - NAME: a node or token type known to the grammar. Matches one node of that
    type.
    Example: NAME, trailer

  - 'text' or "text": a leaf whose value is text.
    Example: 'print', '('

  - any: exactly one node of any kind.

  - type< ... >: a node of that type whose children are matched, in order
    and completely, by the pattern between the angle brackets. any< ... >
    accepts any internal node.
    Example: trailer< '.' 'bar' >

  - name=unit: capture whatever unit matched under name.
    Example: args=any*

  - [unit]: optional, the same as unit{0,1}.

  - unit*, unit+, unit{m}, unit{m,}, unit{m,n}: repetition. Repetition is
    greedy and only gives back nodes when the rest of the pattern needs them.

  - a | b: alternation. The first branch that matches is taken.

  - not unit: succeeds without consuming anything when unit does not match at
    this position.

A '#' starts a comment that runs to the end of the line.

# Captures

Every capture has a fixed kind. It is Single when the captured unit always
consumes exactly one node and is not inside a repetition, an optional part or
an alternation with more than one branch. Otherwise it is Many and binds an
ordered, possibly empty, list of nodes.

# Errors

Compile reports problems as *SyntaxError, which matches ErrSyntax with
errors.Is: unbalanced brackets, unknown type names, duplicate capture names,
captures inside 'not', repeated negations, bad repeat bounds, unterminated
strings, empty patterns, and top-level patterns that do not match exactly one
node.
*/
package pattern
