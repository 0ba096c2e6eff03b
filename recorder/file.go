package recorder

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const unknownMIME = "application/octet-stream"

// Extensions the system table may lack. They only matter when the content
// itself cannot be identified.
var audioExtensions = map[string]string{
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
}

func init() {
	for ext, typ := range audioExtensions {
		if mime.TypeByExtension(ext) == "" {
			mime.AddExtensionType(ext, typ)
		}
	}
}

// detectMIME sniffs data and returns the first type in its hierarchy that
// starts with prefix. When nothing matches, the most specific detected type
// is returned with ok=false. Empty or unidentifiable content falls back to
// the file extension, as a browser file picker would.
func detectMIME(name string, data []byte, prefix string) (string, bool) {
	if len(data) > 0 {
		detected := mimetype.Detect(data)
		for m := detected; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), prefix) {
				return m.String(), true
			}
		}
		if !detected.Is(unknownMIME) {
			return detected.String(), false
		}
	}

	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt, strings.HasPrefix(mt, prefix)
		}
	}
	return unknownMIME, false
}

func readAudioFile(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return filepath.Base(path), data, nil
}
