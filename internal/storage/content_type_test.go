package storage

import (
	"bytes"
	"testing"
)

func TestDetectContentType(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	tests := []struct {
		name     string
		provided string
		filename string
		data     []byte
		want     string
	}{
		{"declared type wins", "application/pdf", "label.png", nil, "application/pdf"},
		{"extension lookup", "", "etichetta.pdf", nil, "application/pdf"},
		{"sniffed from content", "", "scan", pngHeader, "image/png"},
		{"unknown falls back", "", "mystery", nil, "application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var data *bytes.Reader
			got := ""
			if tc.data != nil {
				data = bytes.NewReader(tc.data)
				got = DetectContentType(tc.provided, tc.filename, data)
			} else {
				got = DetectContentType(tc.provided, tc.filename, nil)
			}
			if got != tc.want {
				t.Errorf("DetectContentType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAllowedEvidenceType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/pdf", true},
		{"image/jpeg", true},
		{"text/plain; charset=utf-8", true},
		{"IMAGE/PNG", true},
		{"application/zip", false},
		{"text/html", false},
		{"application/x-msdownload", false},
	}

	for _, tc := range tests {
		if got := IsAllowedEvidenceType(tc.contentType); got != tc.want {
			t.Errorf("IsAllowedEvidenceType(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}
