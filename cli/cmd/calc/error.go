package calc

import "github.com/ardnew/xfunc/lang"

var (
	ErrCompile   = lang.NewError("invalid expression")
	ErrRun       = lang.NewError("expression failed")
	ErrNotNumber = lang.NewError("expression result is not a number")
)
