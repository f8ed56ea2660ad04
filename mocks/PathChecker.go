package mocks

import "github.com/stretchr/testify/mock"

// PathChecker mocks pathutil.PathChecker.
type PathChecker struct {
	mock.Mock
}

// IsPathExists ...
func (_m *PathChecker) IsPathExists(pth string) (bool, error) {
	ret := _m.Called(pth)
	return ret.Bool(0), optionalError(ret)
}

// IsDirExists ...
func (_m *PathChecker) IsDirExists(pth string) (bool, error) {
	ret := _m.Called(pth)
	return ret.Bool(0), optionalError(ret)
}

func optionalError(ret mock.Arguments) error {
	if len(ret) > 1 {
		return ret.Error(1)
	}
	return nil
}
