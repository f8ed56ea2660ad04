package mocks

import (
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/stretchr/testify/mock"
)

// Runner mocks runner.Runner.
type Runner struct {
	mock.Mock
}

// Run ...
func (_m *Runner) Run(inv runner.Invocation) (runner.Result, error) {
	ret := _m.Called(inv)

	var res runner.Result
	if fn, ok := ret.Get(0).(func(runner.Invocation) runner.Result); ok {
		res = fn(inv)
	} else {
		res = ret.Get(0).(runner.Result)
	}
	return res, optionalError(ret)
}
