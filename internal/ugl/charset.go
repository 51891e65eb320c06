package ugl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// EncodeBytes converts a rendered document to the on-disk charset. With a
// single-byte charset every character is one byte, so record widths hold
// byte for byte. Unmappable characters become '?'.
func EncodeBytes(doc string, charset string) ([]byte, error) {
	cm, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	if cm == nil {
		return []byte(doc), nil
	}
	mapped := strings.Map(func(r rune) rune {
		if _, ok := cm.EncodeRune(r); ok {
			return r
		}
		return '?'
	}, doc)
	return cm.NewEncoder().Bytes([]byte(mapped))
}

// WriteFile stores doc at path in the given charset, creating parent
// directories as needed.
func WriteFile(path, doc, charset string) error {
	blob, err := EncodeBytes(doc, charset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

func lookupCharset(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	case "cp850", "ibm850":
		return charmap.CodePage850, nil
	default:
		return nil, fmt.Errorf("ugl: unsupported charset: %s", name)
	}
}

// ValidCharset reports whether name is a single-byte charset EncodeBytes
// knows. UTF-8 is refused: non-ASCII text would widen records on disk.
func ValidCharset(name string) bool {
	cm, err := lookupCharset(name)
	return err == nil && cm != nil
}
