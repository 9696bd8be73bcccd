package engine

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites voxie script source into something zygomys
// accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global registration and never shadow user variables.
//  2. kebab-case identifiers become snake_case (paint-sphere -> paint_sphere),
//     since zygomys reads a bare hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals (double-quoted and backtick) pass through untouched.
func preprocessSource(source string) string {
	r := &rewriter{src: []byte(source)}
	r.out = make([]byte, 0, len(source)+len(source)/4)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"':
			r.quoted('"', true)
		case c == '`':
			r.quoted('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.keyword():
		case c == '-' && r.kebab():
		default:
			r.emit(c)
		}
	}
	return string(r.out)
}

type rewriter struct {
	src []byte
	out []byte
	pos int
}

func (r *rewriter) emit(c ...byte) {
	r.out = append(r.out, c...)
	r.pos += len(c)
}

// quoted copies a literal through its closing delimiter.
func (r *rewriter) quoted(delim byte, escapes bool) {
	r.emit(delim)
	for r.pos < len(r.src) && r.src[r.pos] != delim {
		if escapes && r.src[r.pos] == '\\' && r.pos+1 < len(r.src) {
			r.emit(r.src[r.pos], r.src[r.pos+1])
			continue
		}
		r.emit(r.src[r.pos])
	}
	if r.pos < len(r.src) {
		r.emit(delim)
	}
}

// comment collapses any run of semicolons into // and copies the rest of
// the line.
func (r *rewriter) comment() {
	r.out = append(r.out, '/', '/')
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	for r.pos < len(r.src) && r.src[r.pos] != '\n' {
		r.emit(r.src[r.pos])
	}
}

// keyword rewrites :name at the current position. It leaves := alone and
// reports false when the colon does not start a keyword.
func (r *rewriter) keyword() bool {
	next := r.pos + 1
	if next >= len(r.src) {
		return false
	}
	if r.src[next] == '=' {
		r.emit(':', '=')
		return true
	}
	if !isLetter(r.src[next]) {
		return false
	}
	end := next
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out = append(r.out, '"')
	r.out = append(r.out, kwPrefix...)
	r.out = append(r.out, r.src[next:end]...)
	r.out = append(r.out, '"')
	r.pos = end
	return true
}

// kebab turns a hyphen joining two identifier characters into an
// underscore. A hyphen anywhere else is the minus operator.
func (r *rewriter) kebab() bool {
	if r.pos == 0 || r.pos+1 >= len(r.src) {
		return false
	}
	if !isIdentChar(r.src[r.pos-1]) || !isLetter(r.src[r.pos+1]) {
		return false
	}
	r.out = append(r.out, '_')
	r.pos++
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
