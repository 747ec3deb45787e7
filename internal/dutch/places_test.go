package dutch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlace(t *testing.T) {
	tests := []struct {
		in   string
		want Place
	}{
		{"Amsterdam", Place{Name: "Amsterdam", Country: DefaultCountry}},
		{"te Amsterdam", Place{Name: "Amsterdam", Country: DefaultCountry}},
		{"Gemeente Utrecht", Place{Name: "Utrecht", Country: DefaultCountry}},
		{"in de stad Leiden", Place{Name: "de stad Leiden", Country: DefaultCountry}},
		{"Hoogeveen, Hoogeveen, Drenthe", Place{Name: "Hoogeveen", Municipality: "Hoogeveen", Province: "Drenthe", Country: DefaultCountry}},
		{"Antwerpen, Antwerpen, Antwerpen, België", Place{Name: "Antwerpen", Municipality: "Antwerpen", Province: "Antwerpen", Country: "België"}},
		{"a, b, c, d, e", Place{Name: "a", Municipality: "b", Province: "c", Country: "d"}},
		{"Amsterdam,,Noord-Holland", Place{Name: "Amsterdam", Province: "Noord-Holland", Country: DefaultCountry}},
		{"Gent, , , België", Place{Name: "Gent", Country: "België"}},
		{"", Place{Country: DefaultCountry}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePlace(tt.in), tt.in)
	}
}

func TestPlaceString(t *testing.T) {
	p := Place{Name: "Zwolle", Province: "Overijssel", Country: DefaultCountry}
	assert.Equal(t, "Zwolle, Overijssel, Nederland", p.String())
}

func TestStripPlaceIndicators(t *testing.T) {
	assert.Equal(t, "Haarlem", StripPlaceIndicators("te gemeente Haarlem"))
	assert.Equal(t, "", StripPlaceIndicators("nabij"))
	assert.Equal(t, "Den Helder", StripPlaceIndicators("Den Helder"))
}

func TestStandardizePlace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bergen op zoom", "Bergen op Zoom"},
		{"ALPHEN AAN DEN RIJN", "Alphen aan den Rijn"},
		{"den haag", "Den Haag"},
		{"'s-hertogenbosch", "'s-Hertogenbosch"},
		{"  amsterdam  ", "Amsterdam"},
	}
	for _, tt := range tests {
		got := StandardizePlace(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, StandardizePlace(got), "idempotent for %q", tt.in)
	}
}

func TestIsDutchPlace(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Amsterdam", true},
		{"Oud-Beijerland, Zuid-Holland", true},
		{"Fryslân", true},
		{"Harderwijk", true},
		{"Ruinerwold", false},
		{"Paris", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDutchPlace(tt.in), tt.in)
	}
}

func FuzzStandardizePlace(f *testing.F) {
	for _, seed := range []string{"", "bergen op zoom", "'s-gravenhage", "'t zandt", "a  b"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := StandardizePlace(s)
		if twice := StandardizePlace(once); twice != once {
			t.Fatalf("StandardizePlace not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}
