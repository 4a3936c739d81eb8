package logger

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_IsSensitiveName(t *testing.T) {
	s := NewSanitizer(nil)

	tests := map[string]bool{
		"password":      true,
		"user_password": true,
		"Password_Hash": true,
		"api_key":       true,
		"_p_w0":         false,
		"author":        false,
		"tokens_left":   false,
		"name":          false,
	}
	for name, want := range tests {
		assert.Equal(t, want, s.IsSensitiveName(name), name)
	}
}

func TestSanitizer_MaskParams(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		params     map[string]any
		want       map[string]any
		wantMasked bool
	}{
		{
			name:       "sensitive column masks generated names",
			sql:        "Select id From users Where password={:_p_w0} And id={:_p_w1}",
			params:     map[string]any{"_p_w0": "secret123", "_p_w1": 1},
			want:       map[string]any{"_p_w0": DefaultMask, "_p_w1": DefaultMask},
			wantMasked: true,
		},
		{
			name:       "sensitive parameter name",
			sql:        "Select id From sessions Where t={:user_token}",
			params:     map[string]any{"user_token": "abc", "id": 2},
			want:       map[string]any{"user_token": DefaultMask, "id": 2},
			wantMasked: true,
		},
		{
			name:       "case insensitive column",
			sql:        "Select * From users Where PASSWORD={:_p_w0}",
			params:     map[string]any{"_p_w0": "x"},
			want:       map[string]any{"_p_w0": DefaultMask},
			wantMasked: true,
		},
		{
			name:       "nothing sensitive",
			sql:        "Select * From users Where name={:_p_w0}",
			params:     map[string]any{"_p_w0": "Alice"},
			want:       map[string]any{"_p_w0": "Alice"},
			wantMasked: false,
		},
		{
			name:       "no params",
			sql:        "Select Count(*) From users Where password Is Null",
			params:     map[string]any{},
			want:       map[string]any{},
			wantMasked: false,
		},
	}

	s := NewSanitizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, masked := s.MaskParams(tt.sql, tt.params)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMasked, masked)
		})
	}
}

func TestSanitizer_MaskParams_DoesNotModifyInput(t *testing.T) {
	params := map[string]any{"password": "secret"}
	_, _ = NewSanitizer(nil).MaskParams("Select 1", params)
	assert.Equal(t, "secret", params["password"])
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer([]string{"private_data"})

	got, masked := s.MaskParams("Select * From logs Where private_data={:_p_w0}", map[string]any{"_p_w0": "x"})
	assert.True(t, masked)
	assert.Equal(t, DefaultMask, got["_p_w0"])

	_, masked = s.MaskParams("Update users Set password={:_p_w0}", map[string]any{"_p_w0": "x"})
	assert.False(t, masked, "default fields are replaced by custom ones")
}

func TestSanitizer_FormatParams(t *testing.T) {
	s := NewSanitizer(nil)

	assert.Equal(t, "{}", s.FormatParams(nil))
	assert.Equal(t, "{a=1, b=NULL, c=x}", s.FormatParams(map[string]any{"c": "x", "a": 1, "b": nil}))

	long := strings.Repeat("a", 150)
	assert.Equal(t, "{v="+strings.Repeat("a", 100)+"...}", s.FormatParams(map[string]any{"v": long}))
}

func TestSanitizer_ConcurrentUse(t *testing.T) {
	s := NewSanitizer(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := s.MaskParams("Where token={:_p_w0}", map[string]any{"_p_w0": "t"})
			assert.Equal(t, DefaultMask, got["_p_w0"])
		}()
	}
	wg.Wait()
}
