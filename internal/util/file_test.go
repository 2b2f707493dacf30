package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

func TestAcceptFilter_Allows(t *testing.T) {
	png := mimetype.Detect(pngHeader)
	pdf := mimetype.Detect(pdfHeader)

	testCases := []struct {
		name     string
		accept   string
		fileName string
		detected *mimetype.MIME
		want     bool
	}{
		{name: "empty filter", accept: "", fileName: "anything.bin", detected: pdf, want: true},
		{name: "image wildcard", accept: "image/*", fileName: "team.png", detected: png, want: true},
		{name: "image wildcard ignores name", accept: "image/*", fileName: "team.txt", detected: png, want: true},
		{name: "image wildcard rejects pdf", accept: "image/*", fileName: "team.png", detected: pdf, want: false},
		{name: "extension list", accept: ".pdf,.doc,.docx", fileName: "plan.DOCX", detected: nil, want: true},
		{name: "extension list with spaces", accept: " .pdf , .doc ", fileName: "plan.doc", detected: nil, want: true},
		{name: "extension mismatch", accept: ".pdf,.doc,.docx", fileName: "plan.pptx", detected: pdf, want: false},
		{name: "exact mime", accept: "application/pdf", fileName: "plan", detected: pdf, want: true},
		{name: "nothing detected", accept: "image/*", fileName: "x.png", detected: nil, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := ParseAccept(tc.accept)
			assert.Equal(t, tc.want, f.Allows(tc.fileName, tc.detected))
		})
	}
}

func TestAcceptFilter_Empty(t *testing.T) {
	assert.True(t, ParseAccept("").Empty())
	assert.False(t, ParseAccept("video/*").Empty())
}

func TestSniffContent_ReplaysStream(t *testing.T) {
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x42}, 5000)...)

	detected, r, err := SniffContent(bytes.NewReader(body))
	require.NoError(t, err)
	assert.True(t, detected.Is("image/png"))

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, replayed)
}

func TestSniffContent_ShortInput(t *testing.T) {
	detected, r, err := SniffContent(strings.NewReader("hi"))
	require.NoError(t, err)
	assert.True(t, detected.Is("text/plain"))

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(replayed))
}

func TestSanitizeFileName(t *testing.T) {
	testCases := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\plan.pdf`: "plan.pdf",
		"  spaced name.png  ":  "spaced name.png",
		"bad\x00name.png":      "badname.png",
		"":                     "",
		"..":                   "",
		"dir/":                 "dir",
	}

	for in, want := range testCases {
		assert.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}
}
