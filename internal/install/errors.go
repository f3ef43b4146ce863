package install

import "errors"

var (
	ErrInstall = errors.New("install failed")
)
