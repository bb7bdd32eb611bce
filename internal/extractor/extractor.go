package extractor

import (
	"fmt"
	"strings"
)

// Extractor unpacks component archives into the component store. Wine
// components ship as compressed tarballs or zips.
type Extractor struct {
	tar *TARExtractor
	zip *ZIPExtractor
}

func New() *Extractor {
	return &Extractor{
		tar: NewTAR(),
		zip: NewZIP(),
	}
}

func (e *Extractor) Extract(src, dst string) error {
	lower := strings.ToLower(src)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return e.zip.Extract(src, dst)
	case isTarArchive(lower):
		return e.tar.Extract(src, dst)
	default:
		return fmt.Errorf("unsupported archive format: %s", src)
	}
}

func isTarArchive(name string) bool {
	tarExts := []string{".tar.xz", ".tar.gz", ".tar.zst", ".tar.bz2", ".tgz", ".txz", ".tzst", ".tbz2", ".tar"}
	for _, ext := range tarExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
