package places

import "errors"

// errNoChange aborts a Mutate without writing.
var errNoChange = errors.New("no change")
