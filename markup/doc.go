// Package markup parses the tag structure of xfunc documents.
//
// The parser understands just enough markup to describe an expression tree:
// named tags, key/value attributes, nesting, and the self-closing "/>" form.
// It produces generic [Node] values and leaves their meaning to package lang.
//
//	<add arg1="2">
//	  <arg name="x"/>
//	</add>
//
// There is no support for namespaces, entities, CDATA, or text content.
// Text outside of a tag is an error. Declarations and comments are not part
// of the grammar; [Strip] removes them in a separate pass.
//
// Tag names and attribute keys start with a letter followed by letters and
// digits and are lower-cased by the parser. A closing tag must repeat its
// opening tag's name exactly as written. Attribute values may be single- or
// double-quoted, or a bare run of letters, digits, '.', '-', '+' and '_'.
//
// Every error returned by this package is an [*Error] carrying the
// [Position] of the offending token, and matches one of the package's
// sentinel errors with [errors.Is].
package markup
