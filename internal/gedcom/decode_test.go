package gedcom

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIndividual(t *testing.T) {
	doc := NewDecoder().DecodeLines([]string{
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Jan /Jansen/",
		"1 BIRT",
		"2 DATE 1800-01-01",
		"2 PLAC Amsterdam",
		"0 TRLR",
	})

	require.Len(t, doc.Individuals, 1)
	p := doc.Individuals[0]
	assert.Equal(t, "I1", p.ID)
	assert.Equal(t, "Jan", p.GivenNames)
	assert.Equal(t, "Jansen", p.Surname)
	assert.Equal(t, "Amsterdam", p.Birth.Place)
	assert.NotEmpty(t, p.Birth.Date)
	assert.Empty(t, doc.Families)
}

func TestDecodeFamily(t *testing.T) {
	doc := NewDecoder().DecodeLines([]string{
		"0 @I001@ INDI",
		"1 NAME Jan /Jansen/",
		"0 @I002@ INDI",
		"1 NAME Maria /Bakker/",
		"0 @F001@ FAM",
		"1 HUSB @I001@",
		"1 WIFE @I002@",
		"1 MARR",
		"2 DATE 1825-06-01",
	})

	require.Len(t, doc.Individuals, 2)
	require.Len(t, doc.Families, 1)
	f := doc.Families[0]
	assert.Equal(t, "F001", f.ID)
	assert.Equal(t, "I001", f.Father)
	assert.Equal(t, "I002", f.Mother)
	require.NotNil(t, f.Marriage)
	assert.Equal(t, "1825-06-01", f.Marriage.Date)
}

func TestDecodeFullRecord(t *testing.T) {
	doc := NewDecoder().DecodeLines([]string{
		"0 @I7@ INDI",
		"1 NAME Pieter /van der Berg/",
		"1 SEX M",
		"1 BIRT",
		"2 DATE 3 maart 1850",
		"2 PLAC Leiden",
		"1 CHR",
		"2 DATE 10.03.1850",
		"1 DEAT",
		"2 DATE 1920",
		"1 OCCU bakker",
		"1 OCCU   ",
		"1 OCCU molenaar",
		"1 _CUSTOM ignored",
		"2 DATE 1999",
		"1 NOTE Eerste regel",
		"2 CONT tweede regel",
		"2 CONC en meer",
		"1 NOTE los",
		"0 @F1@ FAM",
		"1 CHIL @I7@",
		"1 CHIL @I8@",
		"1 DIV",
		"2 DATE 1900",
		"1 NOTE gescheiden",
	})

	require.Len(t, doc.Individuals, 1)
	p := doc.Individuals[0]
	assert.Equal(t, "Pieter", p.GivenNames)
	assert.Equal(t, "van der", p.Particle)
	assert.Equal(t, "Berg", p.Surname)
	assert.Equal(t, "M", string(p.Sex))
	assert.Equal(t, "03 MAR 1850", p.Birth.Date)
	assert.Equal(t, "Leiden", p.Birth.Place)
	assert.Equal(t, "10 MAR 1850", p.Baptism.Date)
	assert.Equal(t, "1920", p.Death.Date)
	assert.Equal(t, []string{"bakker", "molenaar"}, p.Occupations)
	assert.Equal(t, "Eerste regel tweede regelen meer los", p.Notes)

	require.Len(t, doc.Families, 1)
	f := doc.Families[0]
	assert.Empty(t, f.Father)
	assert.Equal(t, []string{"I7", "I8"}, f.Children)
	assert.Nil(t, f.Marriage)
	assert.Equal(t, "1900", f.Divorce)
	assert.Equal(t, "gescheiden", f.Notes)
}

func TestDecodeSkipsUnknownRecords(t *testing.T) {
	doc := NewDecoder().DecodeLines([]string{
		"0 @S1@ SOUR",
		"1 TITL Doopboek",
		"0 @N1@ NOTE something",
		"0 @SUBM1@ SUBM",
	})
	assert.Empty(t, doc.Individuals)
	assert.Empty(t, doc.Families)
}

func TestDecodeReaderStripsBOMAndBlanks(t *testing.T) {
	in := "\ufeff0 HEAD\n\n0 @I1@ INDI\r\n   1 NAME Anna /de Vries/  \n\n0 TRLR\n"
	doc, err := NewDecoder().Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Individuals, 1)
	assert.Equal(t, "Anna", doc.Individuals[0].GivenNames)
	assert.Equal(t, "de", doc.Individuals[0].Particle)
	assert.Equal(t, "Vries", doc.Individuals[0].Surname)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := NewDecoder().DecodeFile(filepath.Join(t.TempDir(), "nope.ged"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
