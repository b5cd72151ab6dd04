package coerce

import "testing"

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	got, err := Decode[payload]([]byte(`{"name":"x"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Name != "x" {
		t.Errorf("Decode() = %+v, want name x", got)
	}

	_, err = Decode[payload]([]byte(`{"name":`))
	if err == nil {
		t.Fatal("Decode() of truncated JSON succeeded, want error")
	}

	got2, err := DecodeString[map[string]int](`{"a":1}`)
	if err != nil || got2["a"] != 1 {
		t.Errorf("DecodeString() = %v, %v", got2, err)
	}
}

func TestDecodeErrorTruncatesBody(t *testing.T) {
	big := make([]byte, 1000)
	for i := range big {
		big[i] = 'x'
	}
	_, err := Decode[map[string]any](big)
	if err == nil {
		t.Fatal("Decode() succeeded on garbage")
	}
	if len(err.Error()) > 400 {
		t.Errorf("error message length = %d, want truncated body", len(err.Error()))
	}
}
