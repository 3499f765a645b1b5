package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/coursehub/classloader/models"
)

const (
	// DefaultGraphicURL is the placeholder banner shown for classes without artwork.
	DefaultGraphicURL = "url(https://ws.engr.illinois.edu/images/block.i.color.png)"

	htmlAmpersand = "&amp;"
)

// Options controls how rows are mapped to class documents.
//
// HyphensToSpaces and FillSeasonStrings are off by default: the collection was
// seeded without them, so ClassName keeps its hyphens and season_str stays empty.
type Options struct {
	GraphicURL        string
	HyphensToSpaces   bool
	FillSeasonStrings bool
}

// DefaultOptions returns the mapping used to seed the class collection.
func DefaultOptions() Options {
	return Options{GraphicURL: DefaultGraphicURL}
}

// ClassName picks the display title. A non-blank Section Title wins and is
// used as written; otherwise Name is used with "&amp;" decoded to "&".
func ClassName(row *SourceRow, opts Options) string {
	name := strings.ReplaceAll(row.Name, htmlAmpersand, "&")
	if strings.TrimSpace(row.SectionTitle) != "" {
		name = row.SectionTitle
	}
	if opts.HyphensToSpaces {
		name = strings.ReplaceAll(name, "-", " ")
	}
	return name
}

// Season reads the three term flags of a row.
func Season(row *SourceRow) models.Season {
	return models.Season{
		Spring: bool(row.Spring),
		Summer: bool(row.Summer),
		Fall:   bool(row.Fall),
	}
}

// ActiveSeasons lists the terms a class runs in, in spring, summer, fall order.
func ActiveSeasons(s models.Season) []string {
	out := []string{}
	if s.Spring {
		out = append(out, models.SeasonSpring)
	}
	if s.Summer {
		out = append(out, models.SeasonSummer)
	}
	if s.Fall {
		out = append(out, models.SeasonFall)
	}
	return out
}

// NewClassDocument builds the fresh document for a selected row. Ratings and
// counters start at zero and lastUpdated is set to now.
func NewClassDocument(row *SourceRow, now time.Time, opts Options) (models.ClassDocument, error) {
	number, err := row.CourseNumber()
	if err != nil {
		return models.ClassDocument{}, err
	}

	season := Season(row)
	seasonStr := []string{}
	if opts.FillSeasonStrings {
		seasonStr = ActiveSeasons(season)
	}

	return models.ClassDocument{
		CourseID:       "",
		ClassName:      ClassName(row, opts),
		CourseNumber:   fmt.Sprintf("%s %d", row.Subject, number),
		CourseNumValue: number,
		GraphicURL:     opts.GraphicURL,
		Department:     row.Subject,
		Languages:      []string{},
		LastUpdated:    now,
		Season:         season,
		SeasonStr:      seasonStr,
	}, nil
}
