package mcpserver

// GEDCOMFormatContract describes the GEDCOM subset family-wiki reads and
// writes, for LLM consumers preparing extraction data or reading exports.
const GEDCOMFormatContract = `# Family Wiki GEDCOM Contract

Family Wiki reads and writes a lineage-linked subset of GEDCOM 5.5.1 in UTF-8.

## Lines

Every line is ` + "`" + `<level> [@XREF@] <TAG> [value]` + "`" + `. Level 0 starts a new
record. Records other than INDI and FAM (HEAD, SUBM, SOUR, REPO, ...) are
skipped on import.

## Individuals

` + "```" + `
0 @I0001@ INDI
1 NAME Jan /van der Berg/
2 GIVN Jan
2 SURN Berg
2 NPFX van der
1 SEX M
1 BIRT
2 DATE 15 MAR 1850
2 PLAC Amsterdam
1 BAPM
2 DATE 17 MAR 1850
1 DEAT
2 DATE 1901
1 OCCU landbouwer
1 NOTE Long notes are wrapped on word boundaries
2 CONT and continue on CONT lines.
` + "```" + `

- The surname, including any particle such as "van der", sits between slashes.
- SEX is M or F. When absent it is guessed from the first given name.
- CHR is read as a baptism. CONC continues a note without a space.

## Families

` + "```" + `
0 @F0001@ FAM
1 HUSB @I0001@
1 WIFE @I0002@
1 CHIL @I0003@
1 MARR
2 DATE 05 MAY 1875
2 PLAC Haarlem
1 DIV
2 DATE 1890
` + "```" + `

## Dates

Dates are written as ` + "`" + `DD MON YYYY` + "`" + ` with English month abbreviations
(JAN..DEC) or as a bare year. Dutch input such as "15 maart 1850",
"15 mrt. 1850" or "15.03.1850" is normalized by the parse_date tool. Other
text is kept as written, cut to 20 characters.

## Places

Places are comma-separated from specific to general:
` + "`" + `place, municipality, province, country` + "`" + `. Leading words such as "te"
or "gemeente" are dropped, and a missing country defaults to Nederland.

## Extraction data

The export_gedcom tool and the CLI export command accept JSON or YAML:

` + "```" + `json
{
  "persons": [
    {"id": "p1", "name": "Jan van der Berg", "sex": "M",
     "birth_date": "15 maart 1850", "birth_place": "te Amsterdam",
     "occupation": "landbouwer", "confidence": 0.9}
  ],
  "families": [
    {"father": "p1", "mother": "p2", "children": ["p3"],
     "married": true, "marriage_date": "5 mei 1875"}
  ]
}
` + "```" + `

Persons without any name are skipped. Family members refer to person ids and
are rewritten to the assigned @I....@ identifiers on export.
`
