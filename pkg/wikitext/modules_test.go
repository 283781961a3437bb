package wikitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinModules(t *testing.T) {
	tests := []struct {
		module, fn string
		args       map[string]string
		want       string
	}{
		{"String", "len", map[string]string{"1": "héllo"}, "5"},
		{"String", "len", map[string]string{"s": "xyz"}, "3"},
		{"String", "sub", map[string]string{"1": "hello", "2": "-3"}, "llo"},
		{"String", "sub", map[string]string{"1": "hello", "2": "2", "3": "-2"}, "ell"},
		{"String", "sub", map[string]string{"1": "hello", "2": "4", "3": "2"}, ""},
		{"String", "sublength", map[string]string{"1": "hello", "2": "2", "3": "3"}, "ell"},
		{"String", "sublength", map[string]string{"1": "hello", "2": "4", "3": "10"}, "lo"},
		{"String", "pos", map[string]string{"1": "hello", "2": "-1"}, "o"},
		{"String", "pos", map[string]string{"1": "hello", "2": "2"}, "e"},
		{"String", "find", map[string]string{"1": "hello", "2": "l"}, "3"},
		{"String", "find", map[string]string{"1": "hello", "2": "l", "3": "4"}, "4"},
		{"String", "find", map[string]string{"1": "hello", "2": "z"}, "0"},
		{"String", "find", map[string]string{"1": "", "2": "z"}, "0"},
		{"String", "find", map[string]string{"1": "hello", "2": "l+o", "3": "1", "4": "false"}, "3"},
		{"String", "replace", map[string]string{"1": "aaa", "2": "a", "3": "b", "4": "2"}, "bba"},
		{"String", "replace", map[string]string{"1": "aaa", "2": "a", "3": "b"}, "bbb"},
		{"String", "replace", map[string]string{"1": "a1b22", "2": "[0-9]+", "3": "#", "4": "", "5": "false"}, "a#b#"},
		{"String", "rep", map[string]string{"1": "ab", "2": "3"}, "ababab"},
		{"String", "rep", map[string]string{"1": "ab", "2": "0"}, ""},
		{"String", "rep", map[string]string{"1": "x", "2": "1048576"}, strings.Repeat("x", 1<<20)},
		{"Roman", "main", map[string]string{"1": "0"}, ""},
		{"Roman", "main", map[string]string{"1": "4999"}, "MMMMCMXCIX"},
		{"Roman", "main", map[string]string{"1": "-1", "2": "neg"}, "neg"},
		{"Roman", "main", map[string]string{"1": "12.7"}, "XII"},
		{"If empty", "main", map[string]string{"1": "", "2": "", "3": "c"}, "c"},
		{"If empty", "main", map[string]string{"1": ""}, ""},
		{"convert", "convert", map[string]string{"1": "3", "2": "mi"}, "3 mi"},
	}

	for _, tt := range tests {
		t.Run(tt.module+"."+tt.fn, func(t *testing.T) {
			f, ok := LookupModule(tt.module, tt.fn)
			require.True(t, ok)
			got, err := f(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltinModules_Errors(t *testing.T) {
	tests := []struct {
		module, fn string
		args       map[string]string
	}{
		{"String", "pos", map[string]string{"1": "abc", "2": "9"}},
		{"String", "pos", map[string]string{"1": "abc", "2": "0"}},
		{"String", "sub", map[string]string{"1": "abc", "2": "x"}},
		{"String", "find", map[string]string{"1": "abc", "2": "(", "3": "1", "4": "0"}},
		{"Roman", "main", map[string]string{"1": "many"}},
		{"String", "rep", map[string]string{"1": "xxxxxxxxxx", "2": "30000000"}},
		{"String", "rep", map[string]string{"1": "x", "2": "1048577"}},
	}

	for _, tt := range tests {
		t.Run(tt.module+"."+tt.fn, func(t *testing.T) {
			f, ok := LookupModule(tt.module, tt.fn)
			require.True(t, ok)
			_, err := f(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLookupModule_Missing(t *testing.T) {
	_, ok := LookupModule("Nope", "main")
	assert.False(t, ok)
	_, ok = LookupModule("String", "nope")
	assert.False(t, ok)
	assert.Contains(t, ModuleNames(), "String")
}
