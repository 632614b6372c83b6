package moderation

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"

	"chat-hub/errors"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

// EmbeddedWords loads the censored word lists shipped with the binary.
// Lines starting with '#' are comments; blank lines are skipped.
func EmbeddedWords() ([]string, error) {
	var words []string
	err := fs.WalkDir(censoredFolder, "censored", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		file, err := censoredFolder.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words = append(words, line)
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.ErrEmptyCensoredWords
	}
	return words, nil
}
