package hostpkg

import "errors"

var (
	ErrPackageBuild = errors.New("host package build failed")
)
