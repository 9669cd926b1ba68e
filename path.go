package relaywire

import (
	"strconv"
	"strings"
)

// Path locates a value inside a JSON tree using dotted field access and
// bracketed indices, e.g. ".channels[2].sender.email". The root is the empty
// path. Path values are immutable; every builder method returns a new Path.
type Path string

// Root is the empty path.
const Root Path = ""

// Field appends a record field access.
func (p Path) Field(name string) Path { return p + Path("."+name) }

// Index appends a sequence index.
func (p Path) Index(i int) Path { return p + Path("["+strconv.Itoa(i)+"]") }

// Key appends a mapping key. The key is quoted so keys containing dots or
// brackets stay unambiguous.
func (p Path) Key(k string) Path { return p + Path("["+strconv.Quote(k)+"]") }

func (p Path) String() string { return string(p) }

// Display renders the path for humans, using "." for the root.
func (p Path) Display() string {
	if p == Root {
		return "."
	}
	return string(p)
}

// HasSuffix reports whether the path ends with the given rendered suffix.
func (p Path) HasSuffix(suffix string) bool { return strings.HasSuffix(string(p), suffix) }
