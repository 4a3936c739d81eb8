package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name     string
		provider ConfigProvider
		want     bool
	}{
		{"nil provider", nil, false},
		{"provider value", ConfigProviderFunc(func() (*Options, error) {
			return &Options{IsClearAfterExecution: true}, nil
		}), true},
		{"provider error", ConfigProviderFunc(func() (*Options, error) {
			return &Options{IsClearAfterExecution: true}, errors.New("unavailable")
		}), false},
		{"nil options", ConfigProviderFunc(func() (*Options, error) { return nil, nil }), false},
		{"panic", ConfigProviderFunc(func() (*Options, error) { panic("boom") }), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := loadOptions(tt.provider)
			assert.NotNil(t, opts)
			assert.Equal(t, tt.want, opts.IsClearAfterExecution)
		})
	}
}

func TestLoadOptions_ReturnsCopy(t *testing.T) {
	shared := &Options{IsClearAfterExecution: true}
	opts := loadOptions(ConfigProviderFunc(func() (*Options, error) { return shared, nil }))
	opts.IsClearAfterExecution = false
	assert.True(t, shared.IsClearAfterExecution)
}

func TestOptions_CloneNil(t *testing.T) {
	var o *Options
	assert.Equal(t, DefaultOptions(), o.Clone())
}
