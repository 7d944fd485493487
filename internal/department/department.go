package department

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Department is a catalog entry. The ID is a stable ASCII slug derived from
// the English name; requests and events reference departments by slug.
type Department struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"-"`
	NameSV string `json:"-"`
}

type entry struct {
	en string
	sv string
}

// The catalog mirrors the sections of the university hosting the portal.
var catalog = []entry{
	{en: "Computer Science", sv: "Datavetenskap"},
	{en: "Mathematics", sv: "Matematik"},
	{en: "Physics", sv: "Fysik"},
	{en: "Chemistry", sv: "Kemi"},
	{en: "Biology", sv: "Biologi"},
	{en: "Economics", sv: "Nationalekonomi"},
	{en: "Law", sv: "Juridik"},
	{en: "Medicine", sv: "Medicin"},
	{en: "Humanities", sv: "Humaniora"},
	{en: "Engineering", sv: "Teknik"},
	{en: "Student Union", sv: "Studentkåren"},
}

// Slugify folds a display name onto the catalog slug form: ASCII-transliterated,
// lower-cased, spaces as hyphens.
func Slugify(name string) string {
	s := unidecode.Unidecode(name)
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.Fields(s)
	return strings.Join(fields, "-")
}

// All returns the catalog with both localized names populated.
func All() []Department {
	items := make([]Department, 0, len(catalog))
	for _, e := range catalog {
		items = append(items, Department{
			ID:     Slugify(e.en),
			NameEN: e.en,
			NameSV: e.sv,
		})
	}
	return items
}

// Valid reports whether slug names a catalog department.
func Valid(slug string) bool {
	for _, e := range catalog {
		if Slugify(e.en) == slug {
			return true
		}
	}
	return false
}
