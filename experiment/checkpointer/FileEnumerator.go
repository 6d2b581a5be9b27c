package checkpointer

import (
	"fmt"
	"path/filepath"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v%05d%v", f.name, f.i, f.extension)
}

// FilenameEnumerator returns a function which will return filenames
// in dir with a zero-padded counter suffix. Each time the returned
// function is called, the counter will be one higher than on the
// previous call, starting at start+1.
func FilenameEnumerator(start int, dir, name, extension string) func() string {
	enum := fileEnumerator{
		i:         start,
		name:      filepath.Join(dir, name),
		extension: extension,
	}

	return enum.filename
}
