package dutch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCountry fills Place.Country when the input names fewer than four
// components.
const DefaultCountry = "Nederland"

// Place is a place name split into its positional components.
type Place struct {
	Name         string `json:"place"`
	Municipality string `json:"municipality,omitempty"`
	Province     string `json:"province,omitempty"`
	Country      string `json:"country"`
}

// String joins the non-empty components with ", ".
func (p Place) String() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Name, p.Municipality, p.Province, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// placeIndicators are words that introduce a place in record text,
// as in "geboren te Amsterdam" or "gemeente Utrecht".
var placeIndicators = setOf("te", "in", "van", "bij", "nabij", "gemeente", "stad", "dorp")

// placePrepositions stay lowercase unless they open the name.
var placePrepositions = setOf("aan", "de", "den", "der", "bij", "op", "in", "onder", "van", "het", "'t", "ten", "ter", "te", "en")

var knownPlaces = []string{
	"amsterdam", "rotterdam", "den haag", "'s-gravenhage", "utrecht", "groningen",
	"leeuwarden", "eindhoven", "tilburg", "breda", "nijmegen", "arnhem", "haarlem",
	"leiden", "delft", "dordrecht", "zwolle", "deventer", "maastricht", "middelburg",
	"'s-hertogenbosch", "den bosch", "alkmaar", "hoorn", "enkhuizen", "gouda",
	"amersfoort", "apeldoorn", "enschede", "assen", "lelystad", "zaandam", "schiedam",
	"vlaardingen", "kampen", "harderwijk", "zutphen", "venlo", "roermond", "heerlen",
	"friesland", "fryslan", "holland", "zeeland", "brabant", "limburg", "gelderland",
	"overijssel", "drenthe", "flevoland", "veluwe", "twente", "achterhoek", "betuwe",
	"nederland",
}

var dutchSuffixes = []string{"en", "um", "ijk", "wijk", "dijk", "dam", "berg", "huis"}

// foldAccents removes combining marks so "Fryslân" compares as "fryslan".
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripPlaceIndicators removes leading indicator words such as "te" or
// "gemeente".
func StripPlaceIndicators(s string) string {
	words := strings.Fields(s)
	i := 0
	for i < len(words) {
		if _, ok := placeIndicators[strings.ToLower(words[i])]; !ok {
			break
		}
		i++
	}
	return strings.Join(words[i:], " ")
}

// ParsePlace splits a place string into place, municipality, province and
// country. Components keep their position even when empty, so
// "Amsterdam,,Noord-Holland" has no municipality. Components beyond the
// fourth are ignored.
func ParsePlace(s string) Place {
	parts := strings.Split(StripPlaceIndicators(s), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var p Place
	fields := []*string{&p.Name, &p.Municipality, &p.Province, &p.Country}
	for i := 0; i < len(parts) && i < len(fields); i++ {
		*fields[i] = parts[i]
	}
	if len(parts) < len(fields) {
		p.Country = DefaultCountry
	}
	return p
}

// StandardizePlace capitalizes every word of a place name except
// prepositions after the first word, e.g. "bergen op zoom" -> "Bergen op Zoom".
func StandardizePlace(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, ok := placePrepositions[lw]; ok && (i > 0 || lw == "'t") {
			words[i] = lw
			continue
		}
		// "'s-Gravenhage" keeps its lowercase genitive prefix.
		if rest, ok := strings.CutPrefix(lw, "'s-"); ok {
			words[i] = "'s-" + title(rest)
			continue
		}
		words[i] = title(lw)
	}
	return strings.Join(words, " ")
}

// IsDutchPlace reports whether name looks like a Dutch place: it mentions a
// known place or region, or ends in a typically Dutch suffix.
func IsDutchPlace(name string) bool {
	folded, _, err := transform.String(foldAccents, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}
	if folded == "" {
		return false
	}
	for _, known := range knownPlaces {
		if strings.Contains(folded, known) {
			return true
		}
	}
	for _, suf := range dutchSuffixes {
		if strings.HasSuffix(folded, suf) {
			return true
		}
	}
	return false
}
