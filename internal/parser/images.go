package parser

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const maxImages = 2

// diskImageSuffix matches cover art dropped next to the sidecar:
// <base>, <base>2, <base>-poster, <base>1-landscape and so on.
var diskImageSuffix = regexp.MustCompile(`(?i)^\d*(-landscape|-thumb|-poster|-cover)?\.(jpg|jpeg|png|webp)$`)

// extractImages resolves up to two cover images: files on disk next to the
// sidecar win, then <thumb> URLs from the document. The first image becomes
// the scene cover, a second one is kept as an extra.
func (p *NFOParser) extractImages(nfoFile string, nfo *movieNFO) (cover, other string) {
	images := p.readDiskImages(nfoFile)
	if len(images) == 0 {
		images = p.downloadThumbs(nfo)
	}
	if len(images) > 0 {
		cover = encodeImage(images[0])
	}
	if len(images) > 1 {
		other = encodeImage(images[1])
	}
	return cover, other
}

// readDiskImages finds image files named after the sidecar in its folder.
func (p *NFOParser) readDiskImages(nfoFile string) [][]byte {
	dir := filepath.Dir(nfoFile)
	base := strings.TrimSuffix(filepath.Base(nfoFile), filepath.Ext(nfoFile))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) <= len(base) || !strings.EqualFold(name[:len(base)], base) {
			continue
		}
		if diskImageSuffix.MatchString(name[len(base):]) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var images [][]byte
	for _, name := range names {
		if len(images) == maxImages {
			break
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			p.log.Debugf("Failed to read cover image %s: %v", name, err)
			continue
		}
		images = append(images, data)
	}
	return images
}

// downloadThumbs fetches <thumb> URLs, preferring landscape aspect, then
// poster, then anything. Download failures are skipped.
func (p *NFOParser) downloadThumbs(nfo *movieNFO) [][]byte {
	var urls []string
	for _, aspect := range []string{"landscape", "poster", ""} {
		for _, t := range nfo.Thumbs {
			if u := text(t.URL); u != "" && (aspect == "" || strings.EqualFold(t.Aspect, aspect)) {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			break
		}
	}
	var images [][]byte
	for _, u := range urls {
		if len(images) == maxImages {
			break
		}
		resp, err := p.http.R().Get(u)
		if err != nil || resp.IsError() {
			p.log.Debugf("Failed to download the cover image from %s: %v", u, err)
			continue
		}
		images = append(images, resp.Body())
	}
	return images
}

// encodeImage embeds raw image bytes as a data URI the catalog accepts.
func encodeImage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
