package depot

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeContent(t *testing.T) {
	t.Run("empty content yields empty blob", func(t *testing.T) {
		got, err := DecodeContent("")
		if err != nil {
			t.Fatalf("DecodeContent() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("plain text stored as UTF-8", func(t *testing.T) {
		got, err := DecodeContent("hello world")
		if err != nil {
			t.Fatalf("DecodeContent() error = %v", err)
		}
		if !bytes.Equal(got, []byte("hello world")) {
			t.Errorf("got %q, want %q", got, "hello world")
		}
	})

	t.Run("base64 data URI decoded", func(t *testing.T) {
		raw := []byte{0x89, 0x50, 0x4e, 0x47}
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

		got, err := DecodeContent(uri)
		if err != nil {
			t.Fatalf("DecodeContent() error = %v", err)
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("got %v, want %v", got, raw)
		}
	})

	t.Run("textual data URI keeps payload", func(t *testing.T) {
		got, err := DecodeContent("data:text/plain,hello")
		if err != nil {
			t.Fatalf("DecodeContent() error = %v", err)
		}
		if string(got) != "hello" {
			t.Errorf("got %q, want %q", got, "hello")
		}
	})

	t.Run("malformed data URI", func(t *testing.T) {
		if _, err := DecodeContent("data:image/png;base64"); err == nil {
			t.Fatal("DecodeContent() expected error for missing payload")
		}
	})

	t.Run("invalid base64 payload", func(t *testing.T) {
		if _, err := DecodeContent("data:image/png;base64,!!!not-base64!!!"); err == nil {
			t.Fatal("DecodeContent() expected error for bad base64")
		}
	})
}

func TestDataURIMimeType(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"data:image/png;base64,AAAA", "image/png"},
		{"data:text/plain,hello", "text/plain"},
		{"plain text", ""},
		{"data:", ""},
	}
	for _, tt := range tests {
		if got := DataURIMimeType(tt.content); got != tt.want {
			t.Errorf("DataURIMimeType(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
