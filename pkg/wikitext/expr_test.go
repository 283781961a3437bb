package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
		{"10 / 4", "2.5"},
		{"10 div 4", "2.5"},
		{"7 mod 3", "1"},
		{"-7 mod 3", "-1"},
		{"7.9 mod 3", "1"},
		{"2^3", "8"},
		{"2^3^2", "64"},
		{"-2^2", "4"},
		{"2^-1", "0.5"},
		{"3 = 3", "1"},
		{"3 != 3", "0"},
		{"3 <> 4", "1"},
		{"2 < 3", "1"},
		{"2 >= 3", "0"},
		{"1 and 0", "0"},
		{"1 or 0", "1"},
		{"not 0", "1"},
		{"3.14159 round 2", "3.14"},
		{"1250 round -2", "1300"},
		{"abs -4", "4"},
		{"floor 2.7", "2"},
		{"ceil 2.1", "3"},
		{"trunc -2.7", "-2"},
		{"1/3", "0.33333333333333"},
		{"pi", "3.1415926535898"},
		{"1 + 1 = 2 and 2 > 1", "1"},
		{"  ", ""},
		{"-0", "0"},
		{"1 MOD 2", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := EvalExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalExpr_Errors(t *testing.T) {
	tests := []string{
		"1/0",
		"5 mod 0",
		"2 +",
		"(1 + 2",
		"1 2",
		"foo",
		"1 ! 2",
		"1 @ 2",
		")",
		"1..2",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := EvalExpr(input)
			assert.Error(t, err)
		})
	}
}
