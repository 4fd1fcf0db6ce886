package jsoncodec

import (
	"errors"
	"strings"
	"testing"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMarshalAndUnmarshal(t *testing.T) {
	in := testRecord{ID: "load_prices", Name: "load_prices"}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"id":"load_prices","name":"load_prices"}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var out testRecord
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out != in {
		t.Fatalf("expected round trip to match, got %#v", out)
	}

	indented, err := MarshalIndent(in, "", "  ")
	if err != nil {
		t.Fatalf("marshal indent failed: %v", err)
	}
	if !strings.Contains(string(indented), "\n  \"id\"") {
		t.Fatalf("expected indented output, got %s", indented)
	}
}

func TestMarshalSortsMapKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"a":2,"b":1}` {
		t.Fatalf("expected sorted keys, got %s", data)
	}
}

func TestDecode(t *testing.T) {
	var out []testRecord
	if err := Decode(strings.NewReader(`[{"id":"a","name":"x"},{"id":"b","name":"y"}]`), &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out) != 2 || out[1].ID != "b" {
		t.Fatalf("unexpected decode result %#v", out)
	}
}

func TestDecodeBody(t *testing.T) {
	out := testRecord{ID: "kept"}
	if err := DecodeBody(nil, &out); err != nil || out.ID != "kept" {
		t.Fatalf("empty body must be a no-op, got %v %#v", err, out)
	}
	if err := DecodeBody([]byte("Access Denied"), &out); !errors.Is(err, ErrNotJSON) {
		t.Fatalf("expected ErrNotJSON, got %v", err)
	}
	if err := DecodeBody([]byte(`{"id":"etl_daily"}`), &out); err != nil || out.ID != "etl_daily" {
		t.Fatalf("unexpected decode result %v %#v", err, out)
	}
}

func TestConvert(t *testing.T) {
	var m map[string]any
	if err := Convert(testRecord{ID: "a", Name: "b"}, &m); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if m["id"] != "a" || m["name"] != "b" {
		t.Fatalf("unexpected map %#v", m)
	}
}
