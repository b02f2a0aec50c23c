// transactions are serialized to canonical JSON before hashing or signing: object keys
// sorted by code point, no insignificant whitespace, non-ASCII characters left unescaped.
// the output matches Python's json.dumps(sort_keys=True, separators=(",", ":"),
// ensure_ascii=False), which is what Planetmint nodes hash.
//
// strings are escaped with the gowebpki/jcs library (RFC 8785 string rules are the same
// as Python's). numbers are NOT passed through jcs: integer literals are kept exactly and
// decimals are printed the way Python prints a float.
package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON converts JSON to its canonical form.
//
// If the input is not valid JSON, or holds a number outside the float64 range, an error is returned.
func CanonicalizeJSON(jsonData []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewValidationError("invalid JSON: trailing data after value")
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCanonical marshals v with encoding/json and canonicalizes the result.
// json.Number and json.RawMessage values keep their number literals.
func MarshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, WrapValidationError(err, "failed to marshal JSON")
	}

	canonical, err := CanonicalizeJSON(raw)
	if err != nil {
		return nil, WrapValidationError(err, "failed to canonicalize JSON")
	}
	return canonical, nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		return writeString(buf, t)
	case json.Number:
		n, err := CanonicalNumber(t.String())
		if err != nil {
			return err
		}
		buf.WriteString(n)
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		// byte order of valid UTF-8 is code point order
		slices.Sort(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return NewInternalError(fmt.Sprintf("unexpected JSON value of type %T", v))
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return WrapValidationError(err, "failed to encode string")
	}
	// json.Marshal escapes HTML characters; jcs re-emits them raw.
	out, err := jcs.Transform(quoted)
	if err != nil {
		return WrapValidationError(err, "failed to canonicalize string")
	}
	buf.Write(out)
	return nil
}

// CanonicalNumber rewrites a JSON number literal the way Python prints it after
// json.loads: integers exactly, with any number of digits; decimals and exponent forms
// as the shortest repr of the float64 ("1.0", "0.0001", "1e-05", "1e+16").
func CanonicalNumber(literal string) (string, error) {
	if !strings.ContainsAny(literal, ".eE") {
		n, ok := new(big.Int).SetString(literal, 10)
		if !ok {
			return "", NewValidationError(fmt.Sprintf("invalid integer %q", literal))
		}
		return n.String(), nil
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", NewValidationError(fmt.Sprintf("number %s is outside the float64 range", literal))
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil {
		return "", WrapInternalError(err, "failed to format number")
	}
	if exp < -4 || exp >= 16 {
		return sci, nil
	}
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed, nil
}
