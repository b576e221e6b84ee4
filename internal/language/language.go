package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2/3
	alt3    string   // alternate 3-letter code
	display string
	words   []string // lowercase names and endonyms
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"sn", "sna", "", "Shona", []string{"shona", "chishona"}},
	{"nd", "nde", "", "North Ndebele", []string{"ndebele", "north ndebele", "isindebele"}},
	{"nr", "nbl", "", "South Ndebele", []string{"south ndebele"}},
	{"ny", "nya", "", "Chichewa", []string{"chichewa", "chewa", "nyanja"}},
	{"zu", "zul", "", "Zulu", []string{"zulu", "isizulu"}},
	{"xh", "xho", "", "Xhosa", []string{"xhosa", "isixhosa"}},
	{"sw", "swa", "swh", "Swahili", []string{"swahili", "kiswahili"}},
	{"ts", "tso", "", "Tsonga", []string{"tsonga", "xitsonga"}},
	{"ve", "ven", "", "Venda", []string{"venda", "tshivenda"}},
	{"tn", "tsn", "", "Tswana", []string{"tswana", "setswana"}},
	{"st", "sot", "", "Sotho", []string{"sotho", "sesotho"}},
	{"af", "afr", "", "Afrikaans", []string{"afrikaans"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	// BCP 47 tags such as en-US or sn_ZW.
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return nil
	}
	base, conf := tag.Base()
	if conf == xlanguage.No {
		return nil
	}
	if e, ok := byCode2[base.String()]; ok {
		return e
	}
	return byCode3[base.ISO3()]
}

// Known reports whether label names a language in the table.
func Known(label string) bool {
	return lookup(label) != nil
}

// Canonical returns the ISO 639-1 code for a recognized label and the
// trimmed label unchanged otherwise.
func Canonical(label string) string {
	if e := lookup(label); e != nil {
		return e.code2
	}
	return strings.TrimSpace(label)
}

// ToISO2 converts a recognized code or name to ISO 639-1.
// Unrecognized 2-letter codes pass through; anything else returns "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts a recognized code or name to its 3-letter code.
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable name for a label.
// Returns "Unknown" for empty input and the label as given when unrecognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.TrimSpace(code)
}
