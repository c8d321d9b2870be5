package player

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

// embeddedTags is the title and artist carried by a downloaded file.
type embeddedTags struct {
	Title  string
	Artist string
}

// readTags reads the embedded title and artist. Files without tags yield
// the zero value.
func readTags(path string) (embeddedTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return embeddedTags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if strings.EqualFold(filepath.Ext(path), extMP3) {
			// dhowden/tag rejects some UTF-16 frames id3v2 reads fine.
			return readID3v2Tags(path)
		}
		if errors.Is(err, tag.ErrNoTagsFound) {
			return embeddedTags{}, nil
		}
		return embeddedTags{}, err
	}
	return embeddedTags{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
	}, nil
}

func readID3v2Tags(path string) (embeddedTags, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title", "Artist"}})
	if err != nil {
		return embeddedTags{}, err
	}
	defer t.Close()
	return embeddedTags{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
	}, nil
}
