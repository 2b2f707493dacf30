package util

import (
	"bytes"
	"io"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen matches the default read limit of mimetype.
const sniffLen = 3072

// AcceptFilter is a parsed HTML accept attribute such as "image/*" or
// ".pdf,.doc,.docx". Extension tokens match the file name, MIME tokens match
// the sniffed content type.
type AcceptFilter struct {
	extensions []string
	mimeTypes  []string
	wildcards  []string
}

func ParseAccept(accept string) AcceptFilter {
	var f AcceptFilter
	for _, token := range strings.Split(accept, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		switch {
		case token == "":
		case strings.HasPrefix(token, "."):
			f.extensions = append(f.extensions, token)
		case strings.HasSuffix(token, "/*"):
			f.wildcards = append(f.wildcards, strings.TrimSuffix(token, "*"))
		default:
			f.mimeTypes = append(f.mimeTypes, token)
		}
	}
	return f
}

// Empty filters accept everything.
func (f AcceptFilter) Empty() bool {
	return len(f.extensions) == 0 && len(f.mimeTypes) == 0 && len(f.wildcards) == 0
}

func (f AcceptFilter) Allows(fileName string, detected *mimetype.MIME) bool {
	if f.Empty() {
		return true
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	for _, e := range f.extensions {
		if ext == e {
			return true
		}
	}

	if detected == nil {
		return false
	}
	for m := detected; m != nil; m = m.Parent() {
		for _, prefix := range f.wildcards {
			if strings.HasPrefix(m.String(), prefix) {
				return true
			}
		}
		for _, t := range f.mimeTypes {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}

// SniffContent detects the content type from the head of r and returns a
// reader that still yields the full stream.
func SniffContent(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, err
	}
	head = head[:n]

	return mimetype.Detect(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// SanitizeFileName strips any directory part and control characters. An empty
// result means the name is unusable.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo) || mimeType == "application/x-mpegURL"
}
