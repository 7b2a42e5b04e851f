package binding

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// errInvalidUTF8 reports a string the encoder would otherwise rewrite
	// with U+FFFD.
	errInvalidUTF8 = errors.New("string is not valid UTF-8")

	// errUnsafeInteger reports an integer the engine would round.
	errUnsafeInteger = errors.New("integer has no exact JavaScript number form")
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Serialize encodes v as a JSON text that is also a valid JavaScript
// expression. The encoder escapes quotes, control characters, '<', '>', '&'
// and the U+2028/U+2029 line separators, so the literal cannot terminate
// early or span lines in an ES5.1 parser.
//
// Values with no exact JSON form fail: NaN and infinities, channels,
// functions, complex numbers, cyclic pointer, map or slice graphs, strings
// and map keys that are not valid UTF-8, and integers (int64, uint64,
// json.Number and the like) that a float64 cannot hold exactly. Types that
// implement json.Marshaler are honored; their output is validated before use.
func Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &SerializeError{Err: err}
	}
	if err := checkStrings(reflect.ValueOf(v), "$"); err != nil {
		return "", &SerializeError{Err: err}
	}
	if !utf8.Valid(data) {
		return "", &SerializeError{Err: errInvalidUTF8}
	}
	if err := checkNumbers(data); err != nil {
		return "", &SerializeError{Err: err}
	}
	return string(data), nil
}

// checkStrings walks the parts of v the JSON encoder visits and rejects
// invalid UTF-8. It runs after a successful Marshal, so the graph is acyclic.
// Values with their own marshalers are skipped; their output is checked as
// bytes.
func checkStrings(v reflect.Value, path string) error {
	if !v.IsValid() {
		return nil
	}
	t := v.Type()
	if t.Kind() != reflect.Interface && hasMarshaler(t) {
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("%w at %s", errInvalidUTF8, path)
		}
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkStrings(v.Elem(), path)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkStrings(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			name := fmt.Sprint(key)
			if key.Kind() == reflect.String {
				if !hasMarshaler(key.Type()) && !utf8.ValidString(key.String()) {
					return fmt.Errorf("%w in map key at %s", errInvalidUTF8, path)
				}
				name = key.String()
			}
			if err := checkStrings(iter.Value(), path+"."+name); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() && !f.Anonymous {
				continue
			}
			tag := f.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			if name == "" {
				name = f.Name
			}
			if err := checkStrings(v.Field(i), path+"."+name); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasMarshaler(t reflect.Type) bool {
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
}

// checkNumbers rejects integer literals in data that name a different
// number once parsed as a float64. Literals with a fraction or exponent are
// decimal approximations in any encoder and are left alone.
func checkNumbers(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		n, ok := tok.(json.Number)
		if !ok || exactInteger(string(n)) {
			continue
		}
		return fmt.Errorf("%w: %s", errUnsafeInteger, n)
	}
}

// exactInteger reports whether lit parses to a float64 that is either equal
// to it or prints back as lit. The second case covers float64 values, which
// the encoder writes in their shortest form.
func exactInteger(lit string) bool {
	if strings.ContainsAny(lit, ".eE") {
		return true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return false
	}
	if strconv.FormatFloat(f, 'f', -1, 64) == lit {
		return true
	}
	want, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return false
	}
	got, _ := new(big.Float).SetFloat64(f).Int(nil)
	return got.Cmp(want) == 0
}
