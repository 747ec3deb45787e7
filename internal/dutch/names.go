// Package dutch implements Dutch-locale normalizers for personal names, dates
// and places as they appear in civil registry and church records.
//
// Every function in this package is pure. The lookup tables are package-level
// data built once at init and never mutated afterwards, so they are safe to
// share between goroutines.
package dutch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender is the outcome of given-name gender detection.
type Gender string

// Detected genders.
const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// Particles is the tussenvoegsel vocabulary. Multi-word entries are listed for
// completeness; matching happens per token against particleTokens.
var Particles = []string{
	"van", "de", "der", "den", "van der", "van den", "van de",
	"te", "tot", "van 't", "'t", "op", "onder", "aan", "bij",
}

var particleTokens = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range Particles {
		for _, tok := range strings.Fields(p) {
			m[tok] = struct{}{}
		}
	}
	return m
}()

var maleNames = setOf(
	"jan", "johannes", "johan", "hendrik", "hendrikus", "henk", "willem", "wilhelmus",
	"pieter", "petrus", "piet", "cornelis", "cornelius", "kees", "gerrit", "gerardus",
	"jacob", "jacobus", "jacobs", "dirk", "klaas", "nicolaas", "teunis", "antonie",
	"antonius", "arie", "adrianus", "adriaan", "abraham", "isaac", "izaak", "david",
	"frans", "franciscus", "gijsbert", "hermanus", "harmen", "jozef", "josephus",
	"lambertus", "marinus", "martinus", "maarten", "theodorus", "evert", "egbert",
	"albert", "arend", "bernardus", "christiaan", "daniel", "floris", "frederik",
	"gerard", "govert", "huibert", "jelle", "sietse", "bouke", "douwe", "wiebe",
	"rienk", "sjoerd", "tjeerd", "age", "ate", "roelof", "reinier", "simon",
	"steven", "thomas", "wouter", "leendert", "aart", "bartholomeus", "dingeman",
	"elias", "gijs", "joost", "koen", "lucas", "matthijs", "paulus", "rutger",
	"symen", "teeuwis", "wijnand",
)

var femaleNames = setOf(
	"maria", "marie", "anna", "johanna", "hendrika", "hendrikje", "cornelia", "grietje",
	"geertruida", "geertje", "elisabeth", "catharina", "trijntje", "neeltje", "aaltje",
	"adriana", "alida", "antje", "jannetje", "jacoba", "petronella", "pietje", "wilhelmina",
	"willemijn", "margaretha", "magdalena", "christina", "dirkje", "elizabeth", "engeltje",
	"geesje", "helena", "hilletje", "ida", "ingeborg", "klaasje", "lijsbeth", "lena",
	"maaike", "marijke", "martha", "rebecca", "sara", "sarah", "sophia", "susanna",
	"teuntje", "wijntje", "agatha", "barbara", "dina", "gerarda", "hester", "josina",
	"judith", "lucia", "machteld", "rachel", "ruth", "trui", "truus", "ymkje",
)

// femaleSuffixes are checked longest first.
var femaleSuffixes = []string{"tje", "je", "a", "e"}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// IsParticle reports whether a single token belongs to the particle vocabulary.
func IsParticle(token string) bool {
	_, ok := particleTokens[strings.ToLower(token)]
	return ok
}

// ParseName splits a full name into given names, particle and surname.
//
// Three shapes are recognized, tried in order: the GEDCOM bracketed form
// "Given /Surname/", the comma form "Surname, Given" and the bare form
// "Given ... Surname".
func ParseName(full string) (given, particle, surname string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", "", ""
	}

	if g, s, ok := splitBracketed(full); ok {
		givenWords := strings.Fields(g)
		p, rest := peelParticles(givenWords)
		if len(p) > 0 {
			return strings.Join(rest, " "), strings.Join(p, " "), strings.Join(strings.Fields(s), " ")
		}
		p, rest = peelParticles(strings.Fields(s))
		return strings.Join(givenWords, " "), strings.Join(p, " "), strings.Join(rest, " ")
	}

	if sur, g, ok := strings.Cut(full, ","); ok {
		p, rest := peelParticles(strings.Fields(sur))
		return strings.TrimSpace(g), strings.Join(p, " "), strings.Join(rest, " ")
	}

	words := strings.Fields(full)
	if len(words) < 2 {
		return full, "", ""
	}
	last := len(words) - 1
	for i, w := range words {
		if !IsParticle(w) {
			continue
		}
		// Every word from the first particle up to the surname lands in the
		// particle, even a non-particle such as "Jan van Pieter Berg" ->
		// particle "van Pieter". Callers rely on this exact split.
		return strings.Join(words[:i], " "), strings.Join(words[i:last], " "), words[last]
	}
	return strings.Join(words[:last], " "), "", words[last]
}

// splitBracketed returns the parts around a "/.../" pair. Text after the
// closing slash is ignored.
func splitBracketed(s string) (given, surname string, ok bool) {
	open := strings.IndexByte(s, '/')
	if open < 0 {
		return "", "", false
	}
	end := strings.IndexByte(s[open+1:], '/')
	if end < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1 : open+1+end]), true
}

// peelParticles removes contiguous leading particle tokens.
func peelParticles(words []string) (particles, rest []string) {
	i := 0
	for i < len(words) && IsParticle(words[i]) {
		i++
	}
	return words[:i], words[i:]
}

// DetectGender guesses the gender from the first given name.
func DetectGender(givenNames string) Gender {
	fields := strings.Fields(givenNames)
	if len(fields) == 0 {
		return Unknown
	}
	first := strings.ToLower(fields[0])
	if _, ok := maleNames[first]; ok {
		return Male
	}
	if _, ok := femaleNames[first]; ok {
		return Female
	}
	for _, suf := range femaleSuffixes {
		if strings.HasSuffix(first, suf) {
			return Female
		}
	}
	return Unknown
}

// StandardizeName capitalizes a name the Dutch way: particles stay lowercase
// and every apostrophe-separated segment gets its own capital.
func StandardizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		lw := strings.ToLower(w)
		switch {
		case IsParticle(lw):
			words[i] = lw
		case strings.Contains(lw, "'"):
			segs := strings.Split(lw, "'")
			for j, seg := range segs {
				segs[j] = title(seg)
			}
			words[i] = strings.Join(segs, "'")
		default:
			words[i] = title(lw)
		}
	}
	return strings.Join(words, " ")
}

// title applies Dutch title casing, which also turns a leading "ij" into "IJ".
// A Caser keeps state, so one is created per call.
func title(s string) string {
	if s == "" {
		return s
	}
	return cases.Title(language.Dutch).String(s)
}
