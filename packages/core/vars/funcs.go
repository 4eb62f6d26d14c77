package vars

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func is a built-in substitution function. Args arrive as trimmed strings.
type Func func(args []string) string

// FuncRegistry holds the built-in substitution functions available in
// {{fn(...)}} placeholders.
type FuncRegistry struct {
	funcs map[string]Func
}

func NewFuncRegistry() *FuncRegistry {
	r := &FuncRegistry{funcs: make(map[string]Func)}
	r.funcs["uuid"] = func([]string) string { return uuid.New().String() }
	r.funcs["now"] = funcNow
	r.funcs["timestamp"] = func([]string) string { return strconv.FormatInt(time.Now().Unix(), 10) }
	r.funcs["timestampMs"] = func([]string) string { return strconv.FormatInt(time.Now().UnixMilli(), 10) }
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["randomEmail"] = funcRandomEmail
	return r
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression like "randomString(12)". The second return
// is false when the expression is not a known function call.
func (r *FuncRegistry) Call(expr string) (string, bool) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return "", false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return "", false
	}

	var args []string
	if matches[2] != "" {
		for _, a := range strings.Split(matches[2], ",") {
			args = append(args, strings.Trim(strings.TrimSpace(a), `"'`))
		}
	}
	return fn(args), true
}

func funcNow(args []string) string {
	layout := time.RFC3339
	if len(args) >= 1 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout)
}

func funcRandom(args []string) string {
	lo, hi := 0, 100
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			lo = v
		}
		if v, err := strconv.Atoi(args[1]); err == nil {
			hi = v
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return strconv.Itoa(rand.Intn(hi-lo+1) + lo)
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func funcRandomString(args []string) string {
	length := 16
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			length = v
		}
	}
	return randomString(length, alphanumeric)
}

func funcRandomEmail([]string) string {
	return fmt.Sprintf("%s@%s.test", randomString(8, alphanumeric[:26]), randomString(6, alphanumeric[:26]))
}

func randomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
