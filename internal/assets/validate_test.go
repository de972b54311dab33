package assets

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name       string
		data       []byte
		wantValid  bool
		wantFormat Format
		wantReason string
	}{
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, wantValid: true, wantFormat: FormatPNG},
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, wantValid: true, wantFormat: FormatJPEG},
		{name: "gif", data: []byte("GIF89a"), wantValid: true, wantFormat: FormatGIF},
		{name: "webp", data: []byte("RIFF\x00\x00\x00\x00WEBP"), wantValid: true, wantFormat: FormatWebP},
		{name: "riff wav is lenient webp", data: []byte("RIFF\x00\x00\x00\x00WAVE"), wantValid: true, wantFormat: FormatWebP},
		{name: "bmp", data: []byte("BM\x00\x00"), wantValid: true, wantFormat: FormatBMP},
		{name: "ico", data: []byte{0x00, 0x00, 0x01, 0x00, 0x01}, wantValid: true, wantFormat: FormatICO},
		{name: "svg with prolog", data: []byte(`<?xml version="1.0"?><svg/>`), wantValid: true, wantFormat: FormatSVG},
		{name: "bare svg", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), wantValid: true, wantFormat: FormatSVG},
		{name: "unknown accepted", data: []byte("\x01\x02\x03\x04\x05"), wantValid: true, wantFormat: FormatUnknown},
		{name: "doctype html", data: []byte("<!DOCTYPE html><html>"), wantReason: "HTML"},
		{name: "lowercase html", data: []byte("<html><body>"), wantReason: "HTML"},
		{name: "uppercase html", data: []byte("<HTML><BODY>"), wantReason: "HTML"},
		{name: "mixed case html is not rejected", data: []byte("<Html><body>"), wantValid: true, wantFormat: FormatUnknown},
		{name: "too small", data: []byte{0x89, 0x50, 0x4E}, wantReason: "too small"},
		{name: "empty", data: nil, wantReason: "too small"},
	}

	v := NewValidator(nil)
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := v.Validate(tc.data, "https://example.test/img")
			if got.Valid != tc.wantValid {
				t.Fatalf("Valid = %v, want %v (%+v)", got.Valid, tc.wantValid, got)
			}
			if tc.wantValid && got.Format != tc.wantFormat {
				t.Fatalf("Format = %q, want %q", got.Format, tc.wantFormat)
			}
			if !tc.wantValid && !strings.Contains(got.Reason, tc.wantReason) {
				t.Fatalf("Reason = %q, want it to contain %q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	t.Parallel()

	want := map[Format]string{
		FormatPNG:     ".png",
		FormatJPEG:    ".jpg",
		FormatGIF:     ".gif",
		FormatWebP:    ".webp",
		FormatBMP:     ".bmp",
		FormatICO:     ".ico",
		FormatSVG:     ".svg",
		FormatUnknown: "",
	}
	for format, ext := range want {
		if got := format.Extension(); got != ext {
			t.Fatalf("%s.Extension() = %q, want %q", format, got, ext)
		}
	}
}
