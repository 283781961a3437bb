// modules.go defines the builtin module table used by #invoke.

package wikitext

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ModuleFunc is a builtin module function. args holds named arguments and
// positional ones under "1", "2", ...
type ModuleFunc func(args map[string]string) (string, error)

// builtinModules maps module name to function name to implementation.
var builtinModules = map[string]map[string]ModuleFunc{
	"convert": {
		"convert": convertConvert,
	},
	"If empty": {
		"main": ifEmptyMain,
	},
	"String": {
		"len":       stringLen,
		"sub":       stringSub,
		"sublength": stringSublength,
		"pos":       stringPos,
		"find":      stringFind,
		"replace":   stringReplace,
		"rep":       stringRep,
	},
	"Roman": {
		"main": romanMain,
	},
	"Numero romano": {
		"main": romanMain,
	},
}

// LookupModule returns the builtin function fn of module.
func LookupModule(module, fn string) (ModuleFunc, bool) {
	funcs, ok := builtinModules[module]
	if !ok {
		return nil, false
	}
	f, ok := funcs[fn]
	return f, ok
}

// ModuleNames lists the builtin modules in sorted order.
func ModuleNames() []string {
	names := make([]string, 0, len(builtinModules))
	for name := range builtinModules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// functionParams binds vars by name, falling back to the next unused
// positional argument. Missing values are empty.
func functionParams(args map[string]string, vars ...string) map[string]string {
	params := make(map[string]string, len(vars))
	index := 1
	for _, v := range vars {
		value, ok := args[v]
		if !ok {
			value, ok = args[strconv.Itoa(index)]
			if ok {
				index++
			}
		}
		params[v] = value
	}
	return params
}

// intParam parses an integer parameter; empty means dflt.
func intParam(params map[string]string, name string, dflt int) (int, error) {
	s := strings.TrimSpace(params[name])
	if s == "" {
		return dflt, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func convertConvert(args map[string]string) (string, error) {
	return args["1"] + " " + args["2"], nil
}

// ifEmptyMain returns the first non-empty positional argument.
func ifEmptyMain(args map[string]string) (string, error) {
	var positions []int
	for k := range args {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			positions = append(positions, n)
		}
	}
	sort.Ints(positions)
	for _, n := range positions {
		if v := args[strconv.Itoa(n)]; v != "" {
			return v, nil
		}
	}
	return "", nil
}

// luaIndex converts a 1-based, possibly negative, position into a 0-based
// offset clamped to [0, n].
func luaIndex(i, n int) int {
	switch {
	case i < 0:
		i = n + i
		if i < 0 {
			i = 0
		}
	case i > 0:
		i--
	}
	if i > n {
		i = n
	}
	return i
}

func stringLen(args map[string]string) (string, error) {
	p := functionParams(args, "s")
	return strconv.Itoa(len([]rune(p["s"]))), nil
}

// stringSub returns characters i through j inclusive.
func stringSub(args map[string]string) (string, error) {
	p := functionParams(args, "s", "i", "j")
	s := []rune(p["s"])
	i, err := intParam(p, "i", 1)
	if err != nil {
		return "", err
	}
	j, err := intParam(p, "j", -1)
	if err != nil {
		return "", err
	}
	start := luaIndex(i, len(s))
	end := len(s)
	if j < 0 {
		end = len(s) + j + 1
		if end < 0 {
			end = 0
		}
	} else if j < end {
		end = j
	}
	if start >= end {
		return "", nil
	}
	return string(s[start:end]), nil
}

func stringSublength(args map[string]string) (string, error) {
	p := functionParams(args, "s", "i", "len")
	s := []rune(p["s"])
	i, err := intParam(p, "i", 1)
	if err != nil {
		return "", err
	}
	n, err := intParam(p, "len", 1)
	if err != nil {
		return "", err
	}
	start := luaIndex(i, len(s))
	end := start + n
	if end > len(s) {
		end = len(s)
	}
	if end <= start {
		return "", nil
	}
	return string(s[start:end]), nil
}

// stringPos returns the character at pos.
func stringPos(args map[string]string) (string, error) {
	p := functionParams(args, "target", "pos")
	s := []rune(p["target"])
	pos, err := intParam(p, "pos", 1)
	if err != nil {
		return "", err
	}
	if pos == 0 || pos > len(s) || -pos > len(s) {
		return "", fmt.Errorf("pos %d out of range", pos)
	}
	return string(s[luaIndex(pos, len(s))]), nil
}

// stringFind returns the 1-based position of target in source, or 0.
func stringFind(args map[string]string) (string, error) {
	p := functionParams(args, "source", "target", "start", "plain")
	source, target := p["source"], p["target"]
	if source == "" || target == "" {
		return "0", nil
	}
	start, err := intParam(p, "start", 1)
	if err != nil {
		return "", err
	}
	plain := strings.TrimSpace(p["plain"]) != "false" && strings.TrimSpace(p["plain"]) != "0"
	runes := []rune(source)
	from := luaIndex(start, len(runes))
	rest := string(runes[from:])

	var idx int
	if plain {
		idx = strings.Index(rest, target)
	} else {
		re, err := regexp.Compile(target)
		if err != nil {
			return "", err
		}
		idx = -1
		if loc := re.FindStringIndex(rest); loc != nil {
			idx = loc[0]
		}
	}
	if idx < 0 {
		return "0", nil
	}
	return strconv.Itoa(from + len([]rune(rest[:idx])) + 1), nil
}

func stringReplace(args map[string]string) (string, error) {
	p := functionParams(args, "source", "pattern", "replace", "count", "plain")
	source, pattern, repl := p["source"], p["pattern"], p["replace"]
	count, err := intParam(p, "count", 0)
	if err != nil {
		return "", err
	}
	plain := strings.TrimSpace(p["plain"]) != "false" && strings.TrimSpace(p["plain"]) != "0"
	if count <= 0 {
		count = -1
	}
	if plain {
		return strings.Replace(source, pattern, repl, count), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	n := 0
	return re.ReplaceAllStringFunc(source, func(m string) string {
		if count >= 0 && n >= count {
			return m
		}
		n++
		return re.ReplaceAllString(m, repl)
	}), nil
}

// maxRepBytes bounds the output of String.rep.
const maxRepBytes = 1 << 20

func stringRep(args map[string]string) (string, error) {
	p := functionParams(args, "s", "n")
	n, err := intParam(p, "n", 1)
	if err != nil {
		return "", err
	}
	if n <= 0 || p["s"] == "" {
		return "", nil
	}
	if n > maxRepBytes/len(p["s"]) {
		return "", fmt.Errorf("rep: %d copies of %d bytes exceed %d bytes", n, len(p["s"]), maxRepBytes)
	}
	return strings.Repeat(p["s"], n), nil
}

var romanNumerals = []struct {
	value   int
	numeral string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

var errNotANumber = errors.New("not a number")

// romanMain renders the first argument in Roman numerals. Numbers outside
// [0, 5000) yield the second argument, or "N/A".
func romanMain(args map[string]string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(args["1"]), 64)
	if err != nil {
		return "", errNotANumber
	}
	n := int(f)
	if n < 0 || n >= 5000 {
		if v, ok := args["2"]; ok {
			return v, nil
		}
		return "N/A", nil
	}
	var sb strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			sb.WriteString(r.numeral)
			n -= r.value
		}
	}
	return sb.String(), nil
}
