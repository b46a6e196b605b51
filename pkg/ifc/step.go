package ifc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/chazu/bimgen/pkg/model"
)

// ref is a STEP instance name.
type ref int

func (r ref) String() string { return "#" + strconv.Itoa(int(r)) }

const (
	unset   = "$"
	derived = "*"
)

// dataWriter numbers instances and accumulates the DATA section.
type dataWriter struct {
	buf  bytes.Buffer
	last ref
}

// add appends one instance and returns its name.
func (w *dataWriter) add(typ string, args ...string) ref {
	w.last++
	fmt.Fprintf(&w.buf, "%s= %s(%s);\n", w.last, typ, strings.Join(args, ","))
	return w.last
}

// num formats a real. STEP reals always carry a decimal point.
func num(f float64) string {
	if f == 0 {
		return "0."
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

// str quotes a string, escaping quotes and backslashes and writing
// characters outside printable ASCII as \X2\ hex runs.
func str(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	var run []rune
	flush := func() {
		if len(run) == 0 {
			return
		}
		sb.WriteString(`\X2\`)
		for _, u := range utf16.Encode(run) {
			fmt.Fprintf(&sb, "%04X", u)
		}
		sb.WriteString(`\X0\`)
		run = run[:0]
	}
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			run = append(run, r)
			continue
		}
		flush()
		switch r {
		case '\'':
			sb.WriteString("''")
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	sb.WriteByte('\'')
	return sb.String()
}

// optStr quotes s, or writes unset when it is empty.
func optStr(s string) string {
	if s == "" {
		return unset
	}
	return str(s)
}

func enum(s string) string { return "." + s + "." }

func boolean(b bool) string {
	if b {
		return ".T."
	}
	return ".F."
}

func list(items ...string) string { return "(" + strings.Join(items, ",") + ")" }

func refs(rs []ref) string {
	items := make([]string, len(rs))
	for i, r := range rs {
		items[i] = r.String()
	}
	return list(items...)
}

func nums(fs ...float64) string {
	items := make([]string, len(fs))
	for i, f := range fs {
		items[i] = num(f)
	}
	return list(items...)
}

// value encodes a property value as a typed STEP measure.
func value(v model.Value) (string, error) {
	switch v := v.(type) {
	case model.Label:
		return "IFCLABEL(" + str(string(v)) + ")", nil
	case model.Real:
		return "IFCREAL(" + num(float64(v)) + ")", nil
	case model.Length:
		return "IFCLENGTHMEASURE(" + num(float64(v)) + ")", nil
	case model.Integer:
		return "IFCINTEGER(" + strconv.Itoa(int(v)) + ")", nil
	case model.Bool:
		return "IFCBOOLEAN(" + boolean(bool(v)) + ")", nil
	}
	return "", fmt.Errorf("unsupported property value %T", v)
}
