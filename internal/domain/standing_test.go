package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFilter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"all", ""},
		{" All ", ""},
		{"ALL", ""},
		{"7", "7"},
		{" 10 ", "10"},
		{"allied", "allied"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFilter(tt.in), "grade %q", tt.in)
	}
}
