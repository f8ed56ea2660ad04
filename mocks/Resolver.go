package mocks

import "github.com/stretchr/testify/mock"

// Resolver mocks toolpath.Resolver.
type Resolver struct {
	mock.Mock
}

// Resolve ...
func (_m *Resolver) Resolve(name string) (string, error) {
	ret := _m.Called(name)
	return ret.String(0), optionalError(ret)
}
