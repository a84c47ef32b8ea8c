package crossword

import "fmt"

// invariant panics if cond is false. Used at the end of exported mutators
// to check a representation invariant that should be impossible to violate
// through the public API; tripping it means a programmer bug, not a
// request-time error, so it aborts the process rather than returning an
// error (mirroring the original's checkRep()/assert discipline).
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("crossword: invariant violated: "+format, args...))
	}
}
