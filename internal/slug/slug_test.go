package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Café au Lait", "cafe-au-lait"},
		{"Crème Brûlée", "creme-brulee"},
		{"100% Go", "100-go"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER_case_MiXeD", "upper-case-mixed"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), "Make(%q)", tt.in)
	}
}
