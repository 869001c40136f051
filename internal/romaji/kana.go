package romaji

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	smallTsu   = 'っ'
	prolonged  = 'ー'
	katakanaLo = 'ァ'
	katakanaHi = 'ヴ'
	kanaOffset = 'ァ' - 'ぁ'
)

var kanaSyllables = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
	'か': "ka", 'き': "ki", 'く': "ku", 'け': "ke", 'こ': "ko",
	'さ': "sa", 'し': "shi", 'す': "su", 'せ': "se", 'そ': "so",
	'た': "ta", 'ち': "chi", 'つ': "tsu", 'て': "te", 'と': "to",
	'な': "na", 'に': "ni", 'ぬ': "nu", 'ね': "ne", 'の': "no",
	'は': "ha", 'ひ': "hi", 'ふ': "fu", 'へ': "he", 'ほ': "ho",
	'ま': "ma", 'み': "mi", 'む': "mu", 'め': "me", 'も': "mo",
	'や': "ya", 'ゆ': "yu", 'よ': "yo",
	'ら': "ra", 'り': "ri", 'る': "ru", 'れ': "re", 'ろ': "ro",
	'わ': "wa", 'ゐ': "i", 'ゑ': "e", 'を': "o", 'ん': "n",
	'が': "ga", 'ぎ': "gi", 'ぐ': "gu", 'げ': "ge", 'ご': "go",
	'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
	'だ': "da", 'ぢ': "ji", 'づ': "zu", 'で': "de", 'ど': "do",
	'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
	'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
	'ゔ': "vu",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
	'ゃ': "ya", 'ゅ': "yu", 'ょ': "yo", 'ゎ': "wa",
}

// Two-kana combinations: palatalized i-row syllables and the small-vowel
// spellings used for loanwords.
var kanaDigraphs = map[string]string{
	"きゃ": "kya", "きゅ": "kyu", "きょ": "kyo",
	"ぎゃ": "gya", "ぎゅ": "gyu", "ぎょ": "gyo",
	"しゃ": "sha", "しゅ": "shu", "しょ": "sho", "しぇ": "she",
	"じゃ": "ja", "じゅ": "ju", "じょ": "jo", "じぇ": "je",
	"ちゃ": "cha", "ちゅ": "chu", "ちょ": "cho", "ちぇ": "che",
	"ぢゃ": "ja", "ぢゅ": "ju", "ぢょ": "jo",
	"にゃ": "nya", "にゅ": "nyu", "にょ": "nyo",
	"ひゃ": "hya", "ひゅ": "hyu", "ひょ": "hyo",
	"びゃ": "bya", "びゅ": "byu", "びょ": "byo",
	"ぴゃ": "pya", "ぴゅ": "pyu", "ぴょ": "pyo",
	"みゃ": "mya", "みゅ": "myu", "みょ": "myo",
	"りゃ": "rya", "りゅ": "ryu", "りょ": "ryo",
	"ふぁ": "fa", "ふぃ": "fi", "ふぇ": "fe", "ふぉ": "fo",
	"てぃ": "ti", "でぃ": "di", "てゅ": "tyu", "でゅ": "dyu",
	"とぅ": "tu", "どぅ": "du", "つぁ": "tsa",
	"うぃ": "wi", "うぇ": "we", "うぉ": "wo",
	"ゔぁ": "va", "ゔぃ": "vi", "ゔぇ": "ve", "ゔぉ": "vo",
}

var kanaPunctuation = map[rune]string{
	'、': ",", '。': ".", '「': "\"", '」': "\"", '・': "", '〜': "~",
}

// Kana transliterates hiragana and katakana with modified Hepburn rules.
// Characters it cannot read, such as kanji, are kept as-is.
type Kana struct{}

// Romanize implements Romanizer.
func (Kana) Romanize(ctx context.Context, lines []string) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = RomanizeKana(line)
	}
	return out, nil
}

// RomanizeKana converts a single line. Runs of kana and runs of other text
// become separate words.
func RomanizeKana(line string) string {
	runes := []rune(toHiragana(norm.NFKC.String(line)))
	var (
		words   []string
		current strings.Builder
		inKana  bool
		double  bool
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			flush()
			double = false
			continue
		}
		if p, ok := kanaPunctuation[r]; ok {
			current.WriteString(p)
			flush()
			double = false
			continue
		}
		if unicode.IsPunct(r) {
			current.WriteRune(r)
			double = false
			continue
		}
		kana := isKana(r)
		if kana != inKana && current.Len() > 0 {
			flush()
		}
		inKana = kana
		if !kana {
			current.WriteRune(r)
			double = false
			continue
		}
		switch r {
		case smallTsu:
			double = true
			continue
		case prolonged:
			if v := lastVowel(current.String()); v != 0 {
				current.WriteRune(v)
			}
			continue
		}
		syllable := ""
		if i+1 < len(runes) {
			if d, ok := kanaDigraphs[string(runes[i:i+2])]; ok {
				syllable = d
				i++
			}
		}
		if syllable == "" {
			syllable = kanaSyllables[r]
		}
		if double {
			syllable = geminate(syllable)
			double = false
		}
		current.WriteString(syllable)
	}
	flush()
	return strings.Join(DropRepeatedTail(words), " ")
}

func toHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= katakanaLo && r <= katakanaHi {
			return r - kanaOffset
		}
		return r
	}, s)
}

func isKana(r rune) bool {
	if r == prolonged || r == smallTsu {
		return true
	}
	_, ok := kanaSyllables[r]
	return ok
}

func geminate(syllable string) string {
	if syllable == "" {
		return syllable
	}
	if strings.HasPrefix(syllable, "ch") {
		return "t" + syllable
	}
	if strings.ContainsRune("aiueon", rune(syllable[0])) {
		return syllable
	}
	return syllable[:1] + syllable
}

func lastVowel(s string) rune {
	if s == "" {
		return 0
	}
	last := rune(s[len(s)-1])
	if strings.ContainsRune("aiueo", last) {
		return last
	}
	return 0
}
