package library

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// Storage key layout. Chapter indices are zero padded so that a prefix
// listing returns them in reading order.
const (
	booksPrefix    = "books/"
	progressPrefix = "progress/"
	sourcesPrefix  = "sources/"
	onlinePrefix   = "online/"
	cachePrefix    = "cache/"
	metadataFile   = "metadata.json"
)

func bookKey(bookID string) string {
	return path.Join("books", bookID, metadataFile)
}

func bookDir(bookID string) string {
	return path.Join("books", bookID) + "/"
}

func chapterKey(bookID string, index int) string {
	return path.Join("books", bookID, "chapters", fmt.Sprintf("%06d.json", index))
}

func rawFileKey(bookID string, format types.FileType) string {
	return path.Join("books", bookID, "original."+string(format))
}

func progressKey(bookID string) string {
	return progressPrefix + bookID + ".json"
}

func sourceKey(sourceID string) string {
	return sourcesPrefix + sourceID + ".json"
}

func onlineBookKey(bookID string) string {
	return onlinePrefix + bookID + ".json"
}

func cacheDir(bookID string) string {
	return cachePrefix + bookID + "/"
}

func cacheKey(bookID string, index int) string {
	return cacheDir(bookID) + fmt.Sprintf("%06d.json", index)
}

// indexFromKey parses the chapter index out of a chapter or cache key
func indexFromKey(key string) (int, bool) {
	base := strings.TrimSuffix(path.Base(key), ".json")
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return n, true
}

// validID rejects identifiers that would escape their key prefix
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
