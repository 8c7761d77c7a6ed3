package codecs

import "fmt"

// Path is used in error messages to show what field in a nested data
// structure caused the error.
type Path string

// AddField adds a field name to the path.
func (p Path) AddField(name string) Path {
	return Path(fmt.Sprintf("%v.%v", p, name))
}

// AddIndex adds an index to the path.
func (p Path) AddIndex(index int) Path {
	return Path(fmt.Sprintf("%v[%v]", p, index))
}
