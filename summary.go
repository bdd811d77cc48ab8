package wavsplit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadHeaderSummary decodes the header of every path and returns a text
// dump of them, separated by blank lines. A file that can't be decoded
// contributes an "Error: ..." line and the summary goes on.
func ReadHeaderSummary(paths []string) string {
	entries := make([]string, 0, len(paths))

	for _, path := range paths {
		entry, err := headerSummary(path)
		if err != nil {
			entry = "Error: " + err.Error()
		}

		entries = append(entries, entry)
	}

	return strings.Join(entries, "\n\n")
}

func headerSummary(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", ioError("stat", path, err)
	}

	h, err := DecodeHeader(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return fmt.Sprintf("FileName:\t\t%s\nFileSize:\t\t%d\n%s", filepath.Base(path), info.Size(), h), nil
}
