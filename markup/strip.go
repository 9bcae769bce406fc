package markup

import (
	"strings"
)

// Strip blanks out every "<?...?>" declaration and "<!--...-->" comment in s.
//
// Stripped regions are replaced by spaces, keeping line breaks, so that
// positions reported while parsing the result still refer to the original
// text. Quoted attribute values inside tags are copied verbatim. A start
// delimiter without a matching end delimiter is an error.
func Strip(s string) (string, error) {
	var (
		b     strings.Builder
		inTag bool
		quote byte
	)

	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]

		if inTag {
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}

			case c == '"' || c == '\'':
				quote = c

			case c == '>':
				inTag = false
			}

			b.WriteByte(c)
			i++

			continue
		}

		var start, end string

		var sentinel *Error

		switch {
		case strings.HasPrefix(s[i:], "<!--"):
			start, end, sentinel = "<!--", "-->", ErrUnterminatedComment

		case strings.HasPrefix(s[i:], "<?"):
			start, end, sentinel = "<?", "?>", ErrUnterminatedDecl

		default:
			if c == '<' {
				inTag = true
			}

			b.WriteByte(c)
			i++

			continue
		}

		n := strings.Index(s[i+len(start):], end)
		if n < 0 {
			return "", sentinel.WithPosition(positionOf(s, i)).
				Wrapf("%s has no matching %s", start, end)
		}

		n += i + len(start) + len(end)

		blank(&b, s[i:n])

		i = n
	}

	return b.String(), nil
}

// blank writes a run of spaces the same shape as s.
func blank(b *strings.Builder, s string) {
	for _, r := range s {
		if r == '\n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
}

// positionOf computes the Position of byte offset off within s.
func positionOf(s string, off int) Position {
	pos := Position{Offset: off, Line: 1, Column: 1}

	for _, r := range s[:off] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}
