// Package lang builds and evaluates numeric functions written in a small
// tag dialect.
//
// A source document declares typed arguments and a single expression:
//
//	<arglist>
//	  <arg type="int" name="n"/>
//	  <arg type="double" name="x"/>
//	</arglist>
//	<mult arg1="n">
//	  <sin arg="x"/>
//	</mult>
//
// or any number of named functions that share a top-level argument list or
// declare their own:
//
//	<arglist><arg name="r"/></arglist>
//	<func name="area">
//	  <mult arg1="3.141592653589793"><pow arg1="r" arg2="2"/></mult>
//	</func>
//	<func name="scale">
//	  <arglist><arg type="int" name="k"/><arg name="v"/></arglist>
//	  <mult arg1="k" arg2="v"/>
//	</func>
//
// # Operators
//
// Literals are <double>, <float>, <real>, <integer> and <int>, each with a
// value attribute. Arguments are referenced with <arg index="i"/> or
// <arg name="n"/>.
//
// Unary operators take their operand from an arg attribute or a single
// child: neg, sin, cos, tan, asin, acos, atan, deg, rad, abs, sqrt, exp, ln
// and log, which also accepts a base attribute (default 10).
//
// Binary operators take operands from arg1 and arg2 attributes or from
// children filling the missing positions in order: sub, div, pow, mod and
// atan2.
//
// The variadic operators add and mult accept arg1, arg2 and any number of
// additional children.
//
// Attribute operands are integer literals, float literals or declared
// argument names. They are never parsed as markup.
//
// # Numbers
//
// Every value is a [Number], which is either an Integer (int64) or a Float
// (float64). Binary and variadic operators produce an Integer only when
// every operand is an Integer; sub, div and mod then use integer arithmetic
// with truncation. Integer division or remainder by zero produces the
// corresponding Float. pow, atan2 and the trigonometric, exponential and
// logarithmic operators always produce a Float. neg and abs preserve the
// type of their operand.
//
// # Errors
//
// Every error returned by this package wraps an [*Error] whose [Kind]
// identifies the stage that rejected the input: markup structure, argument
// declarations, expression shape, or a call. Use [errors.Is] with the
// package's sentinel errors, or [KindOf], to distinguish them.
package lang
