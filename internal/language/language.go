package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	xlanguage "golang.org/x/text/language"
)

// Auto asks the caller to detect the language from the transcript.
const Auto = "auto"

type entry struct {
	code2   string          // ISO 639-1 (2-letter)
	code3   string          // ISO 639-2 primary (3-letter)
	alt3    string          // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string          // Human-readable name
	words   []string        // Full word forms (e.g. "english")
	detect  whatlanggo.Lang // detector identifier
}

var languages = []entry{
	{"ja", "jpn", "", "Japanese", []string{"japanese"}, whatlanggo.Jpn},
	{"en", "eng", "", "English", []string{"english"}, whatlanggo.Eng},
	{"ko", "kor", "", "Korean", []string{"korean"}, whatlanggo.Kor},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin"}, whatlanggo.Cmn},
	{"es", "spa", "", "Spanish", []string{"spanish"}, whatlanggo.Spa},
	{"fr", "fra", "fre", "French", []string{"french"}, whatlanggo.Fra},
	{"de", "deu", "ger", "German", []string{"german"}, whatlanggo.Deu},
	{"it", "ita", "", "Italian", []string{"italian"}, whatlanggo.Ita},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}, whatlanggo.Por},
	{"ru", "rus", "", "Russian", []string{"russian"}, whatlanggo.Rus},
}

var (
	byCode2  map[string]*entry
	byCode3  map[string]*entry
	byWord   map[string]*entry
	byDetect map[whatlanggo.Lang]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	byDetect = make(map[whatlanggo.Lang]*entry, len(languages))
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
		byDetect[e.detect] = e
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
	return nil
}

// ToISO2 converts any recognized language code, word or BCP 47 tag to
// ISO 639-1. Unknown 2-letter codes pass through; anything else yields "".
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
	if strings.ContainsAny(code, "-_") {
		if tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-")); err == nil {
			if base, _ := tag.Base(); len(base.String()) == 2 {
				return ToISO2(base.String())
			}
		}
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2.
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(ToISO2(code)); e != nil {
		return e.code3
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(ToISO2(code)); e != nil {
		return e.display
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
