package mocks

import "github.com/stretchr/testify/mock"

// Repository mocks env.Repository.
type Repository struct {
	mock.Mock
}

// List ...
func (_m *Repository) List() []string {
	ret := _m.Called()
	if v, ok := ret.Get(0).([]string); ok {
		return v
	}
	return nil
}

// Unset ...
func (_m *Repository) Unset(key string) error {
	return _m.Called(key).Error(0)
}

// Get ...
func (_m *Repository) Get(key string) string {
	return _m.Called(key).String(0)
}

// Set ...
func (_m *Repository) Set(key, value string) error {
	return _m.Called(key, value).Error(0)
}
