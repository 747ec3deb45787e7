package gedcom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evz/family-wiki-sub001/internal/models"
)

var fixedClock = func() time.Time {
	return time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)
}

func TestFormatHeaderFull(t *testing.T) {
	e := NewEncoder(WithClock(fixedClock))
	assert.Equal(t, []string{
		"0 HEAD",
		"1 SOUR FAMILY_WIKI",
		"2 NAME Family Wiki",
		"2 VERS 1.0",
		"2 CORP Family Wiki",
		"1 DEST ANY",
		"1 DATE 04 MAR 2026",
		"2 TIME 09:30:00",
		"1 SUBM @SUBM1@",
		"1 GEDC",
		"2 VERS 5.5.1",
		"2 FORM LINEAGE-LINKED",
		"1 CHAR UTF-8",
		"1 LANG Dutch",
		"0 @SUBM1@ SUBM",
		"1 NAME Family Wiki",
	}, e.FormatHeader())
}

func TestFormatHeaderMinimal(t *testing.T) {
	e := NewEncoder(WithClock(fixedClock), WithHeader(HeaderProfile(ProfileMinimal)))
	assert.Equal(t, []string{
		"0 HEAD",
		"1 SOUR FAMILY_WIKI",
		"1 DATE 04 MAR 2026",
		"1 GEDC",
		"2 VERS 5.5.1",
		"2 FORM LINEAGE-LINKED",
		"1 CHAR UTF-8",
		"1 LANG English",
	}, e.FormatHeader())
}

func TestFormatIndividual(t *testing.T) {
	e := NewEncoder()
	lines := e.FormatIndividual(models.Individual{
		GivenNames:  "Jan",
		Particle:    "van der",
		Surname:     "Berg",
		Birth:       models.Event{Date: "01 JAN 1800", Place: "Amsterdam"},
		Baptism:     models.Event{Place: "Amsterdam"},
		Occupations: []string{"bakker", " ", ""},
		Notes:       "Zoon van Pieter.",
	})

	assert.Equal(t, []string{
		"0 @I0001@ INDI",
		"1 NAME Jan /van der Berg/",
		"2 GIVN Jan",
		"2 SURN Berg",
		"2 NPFX van der",
		"1 SEX M",
		"1 BIRT",
		"2 DATE 01 JAN 1800",
		"2 PLAC Amsterdam",
		"1 BAPM",
		"2 PLAC Amsterdam",
		"1 OCCU bakker",
		"1 NOTE Zoon van Pieter.",
	}, lines)
}

func TestFormatIndividualSexHandling(t *testing.T) {
	e := NewEncoder()

	explicit := e.FormatIndividual(models.Individual{GivenNames: "Jan", Sex: models.SexFemale})
	assert.Contains(t, explicit, "1 SEX F")

	derived := e.FormatIndividual(models.Individual{GivenNames: "Grietje"})
	assert.Contains(t, derived, "1 SEX F")

	unknown := e.FormatIndividual(models.Individual{GivenNames: "Xyz"})
	for _, l := range unknown {
		assert.False(t, strings.HasPrefix(l, "1 SEX"), l)
	}
}

func TestFormatIndividualEmpty(t *testing.T) {
	e := NewEncoder()
	assert.Equal(t, []string{"0 @I0001@ INDI"}, e.FormatIndividual(models.Individual{}))
}

func TestFormatIndividualWrapsNote(t *testing.T) {
	e := NewEncoder(WithNoteWidth(30))
	note := "Hij werd geboren in een klein huis aan de rand van het dorp en werkte later als molenaar."
	lines := e.FormatIndividual(models.Individual{Notes: note})

	var first string
	var cont []string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "1 NOTE "):
			first = strings.TrimPrefix(l, "1 NOTE ")
		case strings.HasPrefix(l, "2 CONT "):
			cont = append(cont, strings.TrimPrefix(l, "2 CONT "))
		}
	}
	require.NotEmpty(t, first)
	require.NotEmpty(t, cont)
	assert.Equal(t, note, strings.Join(append([]string{first}, cont...), " "))
}

func TestCountersPersistAcrossCalls(t *testing.T) {
	e := NewEncoder()
	assert.Equal(t, "0 @I0001@ INDI", e.FormatIndividual(models.Individual{})[0])
	assert.Equal(t, "0 @I0002@ INDI", e.FormatIndividual(models.Individual{})[0])
	assert.Equal(t, "0 @F0001@ FAM", e.FormatFamily(models.Family{})[0])

	lines := e.Encode([]models.Individual{{GivenNames: "Anna"}}, []models.Family{{}})
	assert.Contains(t, lines, "0 @I0003@ INDI")
	assert.Contains(t, lines, "0 @F0002@ FAM")
}

func TestFormatFamily(t *testing.T) {
	e := NewEncoder()
	e.FormatIndividual(models.Individual{ID: "p1", GivenNames: "Jan"})
	e.FormatIndividual(models.Individual{ID: "p2", GivenNames: "Maria"})

	lines := e.FormatFamily(models.Family{
		Father:   "p1",
		Mother:   "@p2@",
		Children: []string{"X9", ""},
		Marriage: &models.Event{Date: "01 JUN 1825", Place: "Leiden"},
		Divorce:  "1830",
	})
	assert.Equal(t, []string{
		"0 @F0001@ FAM",
		"1 HUSB @I0001@",
		"1 WIFE @I0002@",
		"1 CHIL @X9@",
		"1 MARR",
		"2 DATE 01 JUN 1825",
		"2 PLAC Leiden",
		"1 DIV",
		"2 DATE 1830",
	}, lines)
}

func TestFormatFamilyMarriagePresence(t *testing.T) {
	e := NewEncoder()

	declared := e.FormatFamily(models.Family{Marriage: &models.Event{}})
	assert.Equal(t, []string{"0 @F0001@ FAM", "1 MARR"}, declared)

	absent := e.FormatFamily(models.Family{})
	assert.Equal(t, []string{"0 @F0002@ FAM"}, absent)
}

func TestEncodeLayout(t *testing.T) {
	e := NewEncoder(WithClock(fixedClock), WithHeader(HeaderProfile(ProfileMinimal)))
	lines := e.Encode([]models.Individual{{GivenNames: "Jan", Surname: "Jansen"}}, nil)

	assert.Equal(t, "0 HEAD", lines[0])
	assert.Equal(t, "0 TRLR", lines[len(lines)-1])
	assert.Equal(t, "", lines[len(lines)-2])

	blanks := 0
	for _, l := range lines {
		if l == "" {
			blanks++
		}
	}
	assert.Equal(t, 2, blanks)
	assert.True(t, Validate(lines).Valid)
}

func TestFileRoundTrip(t *testing.T) {
	people := []models.Individual{
		{
			ID:         "I0001",
			GivenNames: "Jan Pieter",
			Particle:   "van der",
			Surname:    "Berg",
			Birth:      models.Event{Date: "01 JAN 1800", Place: "Amsterdam"},
			Baptism:    models.Event{Date: "05 JAN 1800"},
			Death:      models.Event{Date: "1870"},
			Notes:      strings.Repeat("Een lange notitie over het leven. ", 12),
		},
		{
			ID:         "I0002",
			GivenNames: "Maria",
			Surname:    "Bakker",
		},
		{
			ID:         "I0003",
			GivenNames: "Kees",
			Surname:    "Berg",
			Particle:   "van der",
		},
	}
	families := []models.Family{
		{Father: "I0001", Mother: "I0002", Children: []string{"I0003"}, Marriage: &models.Event{Date: "1825"}},
	}

	path := filepath.Join(t.TempDir(), "out", "tree.ged")
	e := NewEncoder(WithNoteWidth(40))
	written, err := e.WriteFile(path, people, families)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Render(written)+"\n", string(data))

	doc, err := NewDecoder().DecodeFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Individuals, len(people))

	for i, want := range people {
		got := doc.Individuals[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.GivenNames, got.GivenNames)
		assert.Equal(t, want.Particle, got.Particle)
		assert.Equal(t, want.Surname, got.Surname)
		assert.Equal(t, want.Birth.Date, got.Birth.Date)
		assert.Equal(t, want.Baptism.Date, got.Baptism.Date)
		assert.Equal(t, want.Death.Date, got.Death.Date)
		assert.Equal(t, strings.Join(strings.Fields(want.Notes), " "), got.Notes)
	}

	require.Len(t, doc.Families, 1)
	assert.Equal(t, "I0001", doc.Families[0].Father)
	assert.Equal(t, "I0002", doc.Families[0].Mother)
	assert.Equal(t, []string{"I0003"}, doc.Families[0].Children)
}
