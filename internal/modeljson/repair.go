package modeljson

import (
	"encoding/json"
)

type frame struct {
	closer    byte
	expectKey bool
}

// repairer rewrites near-JSON into JSON. It tolerates single-quoted strings,
// bare identifier keys, Python literals, trailing commas and truncated tails.
// Scanning stops once the outermost bracket closes.
type repairer struct {
	out   []byte
	stack []frame
	// set once a quoted string or a key separator is seen
	substantive bool
}

// repair returns the rewritten text and whether the input held a quoted
// string or a key/value pair. Bare words in brackets, as in "see [1]" or
// "use {x}", are prose and report false.
func repair(s string) (string, bool) {
	r := &repairer{out: make([]byte, 0, len(s)+16)}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			next, closed := r.readString(s, i)
			r.substantive = true
			if !closed {
				r.out = append(r.out, '"')
			}
			i = next
		case c == '{':
			r.stack = append(r.stack, frame{closer: '}', expectKey: true})
			r.out = append(r.out, c)
			i++
		case c == '[':
			r.stack = append(r.stack, frame{closer: ']'})
			r.out = append(r.out, c)
			i++
		case c == '}' || c == ']':
			r.close(c)
			i++
			if len(r.stack) == 0 {
				return string(r.out), r.substantive
			}
		case c == ',':
			r.out = append(r.out, c)
			r.setExpectKey(true)
			i++
		case c == ':':
			r.out = append(r.out, c)
			r.setExpectKey(false)
			r.substantive = true
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.out = append(r.out, c)
			i++
		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			r.writeWord(s[i:j])
			i = j
		default:
			i++
		}
	}

	r.finish()
	return string(r.out), r.substantive
}

func (r *repairer) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}
	return &r.stack[len(r.stack)-1]
}

func (r *repairer) setExpectKey(v bool) {
	if f := r.top(); f != nil && f.closer == '}' {
		f.expectKey = v
	}
}

func (r *repairer) inKeyPosition() bool {
	f := r.top()
	return f != nil && f.closer == '}' && f.expectKey
}

// readString copies a quoted string starting at s[i] as a double-quoted JSON
// string. It reports whether the closing quote was found.
func (r *repairer) readString(s string, i int) (int, bool) {
	quote := s[i]
	r.out = append(r.out, '"')
	i++
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 >= len(s) {
				return len(s), false
			}
			n := s[i+1]
			switch {
			case quote == '\'' && n == '\'':
				r.out = append(r.out, '\'')
			case isEscapeByte(n):
				r.out = append(r.out, '\\', n)
			default:
				r.out = append(r.out, n)
			}
			i += 2
			continue
		case c == quote:
			r.out = append(r.out, '"')
			return i + 1, true
		case c == '"':
			r.out = append(r.out, '\\', '"')
		case c == '\n':
			r.out = append(r.out, '\\', 'n')
		case c == '\r':
			r.out = append(r.out, '\\', 'r')
		case c == '\t':
			r.out = append(r.out, '\\', 't')
		case c < 0x20:
		default:
			r.out = append(r.out, c)
		}
		i++
	}
	return len(s), false
}

func (r *repairer) writeWord(word string) {
	if r.inKeyPosition() {
		r.out = append(r.out, '"')
		r.out = append(r.out, word...)
		r.out = append(r.out, '"')
		return
	}

	switch word {
	case "true", "True", "TRUE":
		r.out = append(r.out, "true"...)
	case "false", "False", "FALSE":
		r.out = append(r.out, "false"...)
	case "null", "None", "Null", "NULL", "nil", "undefined":
		r.out = append(r.out, "null"...)
	default:
		if isNumber(word) {
			r.out = append(r.out, word...)
			return
		}
		quoted, _ := json.Marshal(word)
		r.out = append(r.out, quoted...)
	}
}

// close handles a closing bracket, closing any inner frames left open.
// A closer with no matching open frame is dropped.
func (r *repairer) close(c byte) {
	match := -1
	for k := len(r.stack) - 1; k >= 0; k-- {
		if r.stack[k].closer == c {
			match = k
			break
		}
	}
	if match < 0 {
		return
	}
	for len(r.stack) > match {
		r.closeTop()
	}
}

func (r *repairer) closeTop() {
	f := r.stack[len(r.stack)-1]
	r.trimSpace()
	switch r.last() {
	case ',':
		r.out = r.out[:len(r.out)-1]
	case ':':
		r.out = append(r.out, "null"...)
	case '"':
		if f.closer == '}' && f.expectKey {
			r.out = append(r.out, ":null"...)
		}
	}
	r.out = append(r.out, f.closer)
	r.stack = r.stack[:len(r.stack)-1]
	r.setExpectKey(false)
}

// finish closes every frame still open at end of input.
func (r *repairer) finish() {
	for len(r.stack) > 0 {
		r.closeTop()
	}
}

func (r *repairer) trimSpace() {
	for len(r.out) > 0 {
		switch r.out[len(r.out)-1] {
		case ' ', '\t', '\n', '\r':
			r.out = r.out[:len(r.out)-1]
		default:
			return
		}
	}
}

func (r *repairer) last() byte {
	if len(r.out) == 0 {
		return 0
	}
	return r.out[len(r.out)-1]
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '$' || c == '-' || c == '+' || c == '.' ||
		c >= 0x80
}

func isEscapeByte(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

func isNumber(word string) bool {
	if word == "" || !(word[0] == '-' || word[0] >= '0' && word[0] <= '9') {
		return false
	}
	return json.Valid([]byte(word))
}
