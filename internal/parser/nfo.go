package parser

import (
	"encoding/xml"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
)

// movieNFO maps the community NFO convention for movies.
// https://kodi.wiki/view/NFO_files/Movies
// Numeric fields stay strings here: a junk value in one element must not
// fail the whole document.
type movieNFO struct {
	XMLName       xml.Name `xml:"movie"`
	Title         string   `xml:"title"`
	OriginalTitle string   `xml:"originaltitle"`
	SortTitle     string   `xml:"sorttitle"`
	Plot          string   `xml:"plot"`
	Outline       string   `xml:"outline"`
	Tagline       string   `xml:"tagline"`
	Studio        string   `xml:"studio"`
	Director      string   `xml:"director"`
	Premiered     string   `xml:"premiered"`
	Year          string   `xml:"year"`
	URL           string   `xml:"url"`
	UserRating    string   `xml:"userrating"`
	Set           struct {
		Name  string `xml:"name"`
		Index string `xml:"index"`
	} `xml:"set"`
	Ratings []struct {
		Max   string `xml:"max,attr"`
		Value string `xml:"value"`
	} `xml:"ratings>rating"`
	Actors []struct {
		Name string `xml:"name"`
	} `xml:"actor"`
	Tags   []string `xml:"tag"`
	Genres []string `xml:"genre"`
	Thumbs []struct {
		Aspect string `xml:"aspect,attr"`
		URL    string `xml:",chardata"`
	} `xml:"thumb"`
}

// NFOParser parses the XML sidecar file next to the scene file.
type NFOParser struct {
	cfg       *config.Config
	log       *logrus.Logger
	http      *resty.Client
	blacklist model.FieldSet
}

func NewNFOParser(cfg *config.Config, log *logrus.Logger) *NFOParser {
	c := resty.New()
	c.SetTimeout(time.Duration(cfg.Image.TimeoutSeconds) * time.Second)
	return &NFOParser{
		cfg:       cfg,
		log:       log,
		http:      c,
		blacklist: model.NewFieldSet(cfg.Blacklist),
	}
}

// sidecarPath returns the expected sidecar location: next to the scene file
// with the media extension swapped, or folder.<ext> in folder mode.
func (p *NFOParser) sidecarPath(scenePath string, folder bool) string {
	ext := p.cfg.Sidecar.Extension
	if folder {
		return filepath.Join(filepath.Dir(scenePath), "folder."+ext)
	}
	base := strings.TrimSuffix(scenePath, filepath.Ext(scenePath))
	return base + "." + ext
}

// Parse reads and extracts the sidecar for scenePath. A missing sidecar
// returns nil. A sidecar that fails to parse as XML is logged and also
// returns nil so the caller can fall back to the regex parser.
func (p *NFOParser) Parse(scenePath string, folder bool, defaults model.DefaultsChain) *model.SceneRecord {
	nfoFile := p.sidecarPath(scenePath, folder)
	data, err := os.ReadFile(nfoFile)
	if err != nil {
		return nil
	}
	p.log.Debugf("Parsing '%s'", nfoFile)

	// Tolerate the non-standard &nbsp; entity some taggers emit.
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "&nbsp;", " "))
	nfo := &movieNFO{}
	if err := xml.Unmarshal([]byte(content), nfo); err != nil {
		p.log.Errorf("Could not parse nfo '%s': %v", nfoFile, err)
		return nil
	}

	rec := &model.SceneRecord{
		Source: model.SourceNFO,
		File:   nfoFile,
	}
	if !p.blacklist.Has(model.FieldTitle) {
		rec.Title = firstOf(text(nfo.Title), text(nfo.OriginalTitle), text(nfo.SortTitle),
			defaults.Lookup(model.FieldTitle, model.SourceRegex))
	}
	if !p.blacklist.Has(model.FieldDetails) {
		rec.Details = firstOf(text(nfo.Plot), text(nfo.Outline), text(nfo.Tagline),
			defaults.Lookup(model.FieldDetails))
	}
	if !p.blacklist.Has(model.FieldStudio) {
		rec.Studio = firstOf(text(nfo.Studio), defaults.Lookup(model.FieldStudio))
	}
	if !p.blacklist.Has(model.FieldDirector) {
		rec.Director = firstOf(text(nfo.Director), defaults.Lookup(model.FieldDirector))
	}
	if !p.blacklist.Has(model.FieldMovie) {
		// The movie set usually carries the collection name. A folder
		// sidecar's own title is the next best thing.
		rec.Movie = firstOf(text(nfo.Set.Name), defaults.Lookup(model.FieldTitle, model.SourceNFO))
	}
	if !p.blacklist.Has(model.FieldDate) {
		rec.Date = firstOf(p.extractDate(nfo), defaults.Lookup(model.FieldDate))
	}
	if !p.blacklist.Has(model.FieldRating) {
		rec.Rating = p.extractRating(nfo)
		if rec.Rating == 0 {
			rec.Rating = defaults.LookupRating()
		}
	}
	if !p.blacklist.Has(model.FieldURL) {
		rec.URL = firstOf(text(nfo.URL), defaults.Lookup(model.FieldURL))
	}
	if !p.blacklist.Has(model.FieldPerformers) {
		for _, a := range nfo.Actors {
			if name := text(a.Name); name != "" {
				rec.Actors = append(rec.Actors, name)
			}
		}
		if len(rec.Actors) == 0 {
			rec.Actors = defaults.LookupActors()
		}
	}
	if !p.blacklist.Has(model.FieldTags) {
		rec.Tags = model.MergeTags(p.extractTags(nfo), defaults.AllTags())
	}
	if idx := text(nfo.Set.Index); idx != "" {
		if i, err := strconv.Atoi(idx); err == nil && i > 0 {
			rec.SceneIndex = i
		}
	}
	if rec.SceneIndex == 0 {
		rec.SceneIndex = defaults.LookupIndex()
	}
	if !p.blacklist.Has(model.FieldCoverImage) {
		rec.CoverImage, rec.OtherImage = p.extractImages(nfoFile, nfo)
	}
	return rec
}

// extractDate takes <premiered> verbatim, or pads <year> to January 1st.
func (p *NFOParser) extractDate(nfo *movieNFO) string {
	if d := text(nfo.Premiered); d != "" {
		return d
	}
	if y := text(nfo.Year); y != "" {
		if _, err := strconv.Atoi(y); err == nil {
			return y + "-01-01"
		}
		p.log.Debugf("Error parsing date: invalid year '%s'", y)
	}
	return ""
}

// extractRating prefers <userrating> (already on a 5 scale), otherwise
// rescales the first <ratings><rating max=N> to 5.
func (p *NFOParser) extractRating(nfo *movieNFO) int {
	if ur := text(nfo.UserRating); ur != "" {
		v, err := strconv.ParseFloat(ur, 64)
		if err != nil {
			p.log.Debugf("Error parsing rating: %v", err)
		} else if v > 0 {
			return int(math.Round(v))
		}
	}
	for _, r := range nfo.Ratings {
		v, err := strconv.ParseFloat(text(r.Value), 64)
		if err != nil {
			p.log.Debugf("Error parsing rating: %v", err)
			continue
		}
		max, err := strconv.ParseFloat(text(r.Max), 64)
		if err != nil || max == 0 {
			// Some taggers omit max. Do not divide by zero.
			max = 1
		}
		return int(math.Round(v / (max / 5)))
	}
	return 0
}

func (p *NFOParser) extractTags(nfo *movieNFO) []string {
	var tags []string
	for _, t := range append(append([]string{}, nfo.Tags...), nfo.Genres...) {
		if t = text(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func text(s string) string {
	return strings.TrimSpace(s)
}
