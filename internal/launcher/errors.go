package launcher

import "errors"

var (
	ErrExec = errors.New("container exec failed")
)
