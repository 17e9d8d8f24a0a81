package interaction

import (
	"errors"
	"testing"
)

func TestParseCustomID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  CustomID
	}{
		{
			"upload with suffix",
			"LIB:UPLOAD:filename=a.pdf;r=2;b=1",
			CustomID{Action: ActionUpload, Filename: "a.pdf"},
		},
		{
			"ask without suffix",
			"LIB:ASK:bookId=42",
			CustomID{Action: ActionAsk, BookID: "42"},
		},
		{
			"ask with suffix",
			"LIB:ASK:bookId=9;r=0;b=4",
			CustomID{Action: ActionAsk, BookID: "9"},
		},
		{
			"filename containing dots and dashes",
			"LIB:UPLOAD:filename=the-art-of-go.v2.pdf",
			CustomID{Action: ActionUpload, Filename: "the-art-of-go.v2.pdf"},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCustomID(tc.input)
			if err != nil {
				t.Fatalf("ParseCustomID(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseCustomID(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseCustomID_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"garbage", "GARBAGE"},
		{"empty", ""},
		{"wrong prefix", "XYZ:ASK:bookId=42"},
		{"unknown action", "LIB:DELETE:bookId=42"},
		{"wrong key for action", "LIB:ASK:filename=a.pdf"},
		{"missing value", "LIB:ASK:bookId="},
		{"missing key", "LIB:ASK:42"},
		{"unknown suffix segment", "LIB:ASK:bookId=42;x=1"},
		{"non-numeric suffix", "LIB:ASK:bookId=42;r=two"},
		{"prefix only", "LIB:UPLOAD"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCustomID(tc.input)
			if !errors.Is(err, ErrUnknownCustomID) {
				t.Errorf("ParseCustomID(%q) = %v, want ErrUnknownCustomID", tc.input, err)
			}
		})
	}
}

func TestCustomID_RoundTrip(t *testing.T) {
	t.Parallel()

	id, err := ParseCustomID(AskID("42", 1, 3))
	if err != nil {
		t.Fatalf("parsing built ask id: %v", err)
	}
	if id.Action != ActionAsk || id.BookID != "42" {
		t.Errorf("round trip = %+v", id)
	}

	id, err = ParseCustomID(UploadID("a.pdf", -1, -1))
	if err != nil {
		t.Fatalf("parsing built upload id: %v", err)
	}
	if id.Action != ActionUpload || id.Filename != "a.pdf" {
		t.Errorf("round trip = %+v", id)
	}
}
