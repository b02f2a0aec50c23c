package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

// test that canonical rejects invalid json

func TestCanonicalizeJSON(t *testing.T) {
	// invalid json
	jsonData := []byte(`{"test": "value"`)
	_, err := CanonicalizeJSON(jsonData)
	if err == nil {
		t.Fatalf("CanonicalizeJSON() expected error, got nil")
	}
	t.Logf("CanonicalizeJSON() correctly rejected invalid JSON: %v", err)
}

func TestCanonicalizeJSON_Ordering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keys sorted recursively",
			input: `{"b": 1, "a": {"z": null, "c": [3, 1, 2]}}`,
			want:  `{"a":{"c":[3,1,2],"z":null},"b":1}`,
		},
		{
			name:  "non-ascii is not escaped",
			input: `{"msg": "Grüße, 世界"}`,
			want:  `{"msg":"Grüße, 世界"}`,
		},
		{
			name:  "html characters and controls",
			input: `{"s": "<a&b>\u0001\u2028"}`,
			want:  "{\"s\":\"<a&b>\\u0001\u2028\"}",
		},
		{
			name:  "keys sorted by code point",
			input: `{"\ud83d\ude00": 3, "\uffff": 4, "é": 2, "z": 1}`,
			want:  "{\"z\":1,\"é\":2,\"\uffff\":4,\"😀\":3}",
		},
		{
			name:  "number literals survive",
			input: `{"big": 12345678901234567890, "w": 1.0, "e": 1e21}`,
			want:  `{"big":12345678901234567890,"e":1e+21,"w":1.0}`,
		},
		{
			name:  "sequences keep their order",
			input: `["b", "a", {"y": 2, "x": 1}]`,
			want:  `["b","a",{"x":1,"y":2}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalizeJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("CanonicalizeJSON() returned error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("CanonicalizeJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshalCanonical_MapOrderIndependent(t *testing.T) {
	first := map[string]any{"operation": "CREATE", "metadata": nil, "version": "3.0"}
	second := map[string]any{"version": "3.0", "operation": "CREATE", "metadata": nil}

	a, err := MarshalCanonical(first)
	if err != nil {
		t.Fatalf("MarshalCanonical() returned error: %v", err)
	}
	b, err := MarshalCanonical(second)
	if err != nil {
		t.Fatalf("MarshalCanonical() returned error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("serializations differ: %s vs %s", a, b)
	}
}

func TestCanonicalNumber(t *testing.T) {
	tests := []struct {
		literal string
		want    string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"100", "100"},
		{"12345678901234567890", "12345678901234567890"},
		{"-98765432109876543210987", "-98765432109876543210987"},
		{"1.0", "1.0"},
		{"2.50", "2.5"},
		{"-0.0", "-0.0"},
		{"1E+2", "100.0"},
		{"123456789.125", "123456789.125"},
		{"0.0001", "0.0001"},
		{"0.00001", "1e-05"},
		{"1e15", "1000000000000000.0"},
		{"1e16", "1e+16"},
		{"1e21", "1e+21"},
		{"1.5e300", "1.5e+300"},
		{"5e-324", "5e-324"},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got, err := CanonicalNumber(tt.literal)
			if err != nil {
				t.Fatalf("CanonicalNumber(%s) returned error: %v", tt.literal, err)
			}
			if got != tt.want {
				t.Errorf("CanonicalNumber(%s) = %s, want %s", tt.literal, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeJSON_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"number overflows float64", `{"x": 1e400}`},
		{"trailing value", `{"a": 1} {"b": 2}`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalizeJSON([]byte(tt.input))
			var cryptoErr *CryptoError
			if !errors.As(err, &cryptoErr) || cryptoErr.Code() != ErrCodeValidation {
				t.Fatalf("CanonicalizeJSON() error = %v, want a validation error", err)
			}
		})
	}
}

func TestMarshalCanonical_KeepsRawNumbers(t *testing.T) {
	doc := map[string]any{
		"metadata": json.RawMessage(`{"w": 1.0, "big": 12345678901234567890}`),
		"count":    json.Number("10.50"),
	}
	got, err := MarshalCanonical(doc)
	if err != nil {
		t.Fatalf("MarshalCanonical() returned error: %v", err)
	}
	want := `{"count":10.5,"metadata":{"big":12345678901234567890,"w":1.0}}`
	if string(got) != want {
		t.Errorf("MarshalCanonical() = %s, want %s", got, want)
	}
}
