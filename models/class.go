package models

import (
	"math"
	"time"
)

// Store field names of a class document. They are shared with the web app and
// must not change.
const (
	FieldCourseID        = "courseId"
	FieldClassName       = "ClassName"
	FieldCourseNumber    = "CourseNumber"
	FieldCourseNumValue  = "CourseNumValue"
	FieldDescription     = "Description"
	FieldDifficultyAvg   = "DifficultyAvg"
	FieldDifficultyCount = "DifficultyCount"
	FieldGraphicURL      = "GraphicUrl"
	FieldRatingAvg       = "RatingAvg"
	FieldDepartment      = "Department"
	FieldRatingCount     = "RatingCount"
	FieldSampleSyllabus  = "SampleSyllabus"
	FieldWorkloadAvg     = "WorkloadAvg"
	FieldWorkloadCount   = "WorkloadCount"
	FieldLanguages       = "languages"
	FieldLastUpdated     = "lastUpdated"
	FieldSeason          = "season"
	FieldSeasonStr       = "season_str"
)

// Season keys, in display order.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
)

// Season records the terms a class is offered in.
type Season struct {
	Spring bool `json:"spring"`
	Summer bool `json:"summer"`
	Fall   bool `json:"fall"`
}

// Map returns the season as the three-key mapping stored on a class document.
func (s Season) Map() map[string]interface{} {
	return map[string]interface{}{
		SeasonSpring: s.Spring,
		SeasonSummer: s.Summer,
		SeasonFall:   s.Fall,
	}
}

// ClassDocument is one entry of the class collection.
type ClassDocument struct {
	CourseID        string    `json:"courseId"`
	ClassName       string    `json:"ClassName"`
	CourseNumber    string    `json:"CourseNumber"`
	CourseNumValue  int       `json:"CourseNumValue"`
	Description     string    `json:"Description"`
	DifficultyAvg   float64   `json:"DifficultyAvg"`
	DifficultyCount int       `json:"DifficultyCount"`
	GraphicURL      string    `json:"GraphicUrl"`
	RatingAvg       float64   `json:"RatingAvg"`
	Department      string    `json:"Department"`
	RatingCount     int       `json:"RatingCount"`
	SampleSyllabus  string    `json:"SampleSyllabus"`
	WorkloadAvg     float64   `json:"WorkloadAvg"`
	WorkloadCount   int       `json:"WorkloadCount"`
	Languages       []string  `json:"languages"`
	LastUpdated     time.Time `json:"lastUpdated"`
	Season          Season    `json:"season"`
	SeasonStr       []string  `json:"season_str"`
}

// Fields returns the document as a store field mapping. Nil slices are written
// as empty arrays.
func (c ClassDocument) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldCourseID:        c.CourseID,
		FieldClassName:       c.ClassName,
		FieldCourseNumber:    c.CourseNumber,
		FieldCourseNumValue:  c.CourseNumValue,
		FieldDescription:     c.Description,
		FieldDifficultyAvg:   c.DifficultyAvg,
		FieldDifficultyCount: c.DifficultyCount,
		FieldGraphicURL:      c.GraphicURL,
		FieldRatingAvg:       c.RatingAvg,
		FieldDepartment:      c.Department,
		FieldRatingCount:     c.RatingCount,
		FieldSampleSyllabus:  c.SampleSyllabus,
		FieldWorkloadAvg:     c.WorkloadAvg,
		FieldWorkloadCount:   c.WorkloadCount,
		FieldLanguages:       nonNil(c.Languages),
		FieldLastUpdated:     c.LastUpdated,
		FieldSeason:          c.Season.Map(),
		FieldSeasonStr:       nonNil(c.SeasonStr),
	}
}

// ClassFromFields rebuilds a class from a stored field mapping. The store id
// becomes CourseID, the same way the web app fills it in on read.
// Values missing from the mapping are left at their zero value.
func ClassFromFields(id string, f map[string]interface{}) ClassDocument {
	c := ClassDocument{
		CourseID:        id,
		ClassName:       asString(f[FieldClassName]),
		CourseNumber:    asString(f[FieldCourseNumber]),
		CourseNumValue:  asInt(f[FieldCourseNumValue]),
		Description:     asString(f[FieldDescription]),
		DifficultyAvg:   asFloat(f[FieldDifficultyAvg]),
		DifficultyCount: asInt(f[FieldDifficultyCount]),
		GraphicURL:      asString(f[FieldGraphicURL]),
		RatingAvg:       asFloat(f[FieldRatingAvg]),
		Department:      asString(f[FieldDepartment]),
		RatingCount:     asInt(f[FieldRatingCount]),
		SampleSyllabus:  asString(f[FieldSampleSyllabus]),
		WorkloadAvg:     asFloat(f[FieldWorkloadAvg]),
		WorkloadCount:   asInt(f[FieldWorkloadCount]),
		Languages:       asStrings(f[FieldLanguages]),
		LastUpdated:     asTime(f[FieldLastUpdated]),
		SeasonStr:       asStrings(f[FieldSeasonStr]),
	}
	if id == "" {
		c.CourseID = asString(f[FieldCourseID])
	}
	if m, ok := f[FieldSeason].(map[string]interface{}); ok {
		c.Season = Season{
			Spring: asBool(m[SeasonSpring]),
			Summer: asBool(m[SeasonSummer]),
			Fall:   asBool(m[SeasonFall]),
		}
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(math.Round(n))
	}
	return 0
}

func asStrings(v interface{}) []string {
	out := []string{}
	switch s := v.(type) {
	case []string:
		out = append(out, s...)
	case []interface{}:
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
	}
	return out
}

// asTime accepts both native timestamps and the RFC 3339 strings a JSON
// round trip leaves behind.
func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
