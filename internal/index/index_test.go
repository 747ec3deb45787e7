package index

import (
	"errors"
	"os"
	"testing"

	"github.com/evz/family-wiki-sub001/internal/apperr"
	"github.com/evz/family-wiki-sub001/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "familywiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDoc() *models.Document {
	return &models.Document{
		Individuals: []models.Individual{
			{
				ID: "I1", GivenNames: "Jan", Particle: "van der", Surname: "Berg", Sex: models.SexMale,
				Birth:       models.Event{Date: "01 JAN 1800", Place: "Amsterdam"},
				Death:       models.Event{Date: "1870", Place: " Leiden "},
				Occupations: []string{"bakker"},
				Notes:       "Molenaar aan de Amstel",
			},
			{ID: "I2", GivenNames: "Maria", Surname: "Bakker", Sex: models.SexFemale,
				Birth: models.Event{Place: "Amsterdam"}},
			{ID: "I3", GivenNames: "Kees", Particle: "van der", Surname: "Berg"},
		},
		Families: []models.Family{
			{ID: "F1", Father: "I1", Mother: "I2", Children: []string{"I3", "I9"},
				Marriage: &models.Event{Date: "1825", Place: "Haarlem"}},
			{ID: "F2", Father: "I3"},
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"imports", "places", "persons", "families", "family_children"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestImportAndChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.ImportDocument("a.ged", "abc123", sampleDoc()); err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if cs["a.ged"] != "abc123" {
		t.Errorf("checksum = %q, want %q", cs["a.ged"], "abc123")
	}

	srcs, err := db.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(srcs) != 1 || srcs[0].Individuals != 3 || srcs[0].Families != 2 {
		t.Errorf("sources = %+v", srcs)
	}
}

func TestGetOrCreatePlace(t *testing.T) {
	db := testDB(t)
	a, err := db.GetOrCreatePlace("  Amsterdam ")
	if err != nil {
		t.Fatal(err)
	}
	b, err := db.GetOrCreatePlace("Amsterdam")
	if err != nil {
		t.Fatal(err)
	}
	if a == 0 || a != b {
		t.Errorf("ids = %d, %d; want equal non-zero", a, b)
	}
	c, _ := db.GetOrCreatePlace("Leiden")
	if c == a {
		t.Error("different places share an id")
	}
	if id, _ := db.GetOrCreatePlace("   "); id != 0 {
		t.Errorf("blank place id = %d, want 0", id)
	}
}

func TestImportSharesPlaces(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM places`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	// Amsterdam, Leiden, Haarlem.
	if n != 3 {
		t.Errorf("places = %d, want 3", n)
	}
}

func TestGetPerson(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())

	p, err := db.GetPerson("a.ged", "I1")
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if p.DisplayName() != "Jan van der Berg" {
		t.Errorf("name = %q", p.DisplayName())
	}
	if p.Birth.Place != "Amsterdam" || p.Death.Place != "Leiden" {
		t.Errorf("places = %q, %q", p.Birth.Place, p.Death.Place)
	}
	if len(p.Occupations) != 1 || p.Occupations[0] != "bakker" {
		t.Errorf("occupations = %v", p.Occupations)
	}
	if p.Sex != models.SexMale {
		t.Errorf("sex = %q", p.Sex)
	}

	if _, err := db.GetPerson("a.ged", "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetPerson("", "I2"); err != nil {
		t.Errorf("lookup without source: %v", err)
	}
}

func TestImportMissingIDsDoNotClash(t *testing.T) {
	db := testDB(t)
	doc := &models.Document{
		Individuals: []models.Individual{
			{GivenNames: "Zonder", Surname: "Id"},
			{ID: "I0001", GivenNames: "Jan", Surname: "Jansen"},
		},
		Families: []models.Family{{Father: "I0001"}, {ID: "F0001"}},
	}
	if err := db.ImportDocument("a.ged", "1", doc); err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	_, total, err := db.ListPersons(PersonFilter{Source: "a.ged"})
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if total != 2 {
		t.Errorf("persons = %d, want 2", total)
	}
	p, err := db.GetPerson("a.ged", "_I0001")
	if err != nil {
		t.Fatalf("GetPerson synthesized id: %v", err)
	}
	if p.GivenNames != "Zonder" {
		t.Errorf("given = %q, want Zonder", p.GivenNames)
	}
	if _, total, _ := db.ListFamilies(FamilyFilter{Source: "a.ged"}); total != 2 {
		t.Errorf("families = %d, want 2", total)
	}
}

func TestListPersons(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())
	_ = db.ImportDocument("b.ged", "2", &models.Document{Individuals: []models.Individual{{ID: "I1", GivenNames: "Anna", Surname: "Aalders"}}})

	all, total, err := db.ListPersons(PersonFilter{})
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("total = %d len = %d, want 4", total, len(all))
	}
	if all[0].Surname != "Aalders" {
		t.Errorf("first = %q, want Aalders", all[0].Surname)
	}

	page, total, _ := db.ListPersons(PersonFilter{Surname: "berg", Limit: 1})
	if total != 2 || len(page) != 1 {
		t.Errorf("surname filter: total = %d len = %d", total, len(page))
	}

	bySource, total, _ := db.ListPersons(PersonFilter{Source: "b.ged"})
	if total != 1 || bySource[0].Source != "b.ged" {
		t.Errorf("source filter = %+v", bySource)
	}
}

func TestListFamiliesAndRelatives(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())

	fams, total, err := db.ListFamilies(FamilyFilter{Source: "a.ged"})
	if err != nil {
		t.Fatalf("ListFamilies: %v", err)
	}
	if total != 2 || len(fams) != 2 {
		t.Fatalf("total = %d", total)
	}
	f := fams[0]
	if f.Father != "I1" || f.Mother != "I2" {
		t.Errorf("parents = %q, %q", f.Father, f.Mother)
	}
	if len(f.Children) != 2 || f.Children[0] != "I3" || f.Children[1] != "I9" {
		t.Errorf("children = %v", f.Children)
	}
	if f.Marriage == nil || f.Marriage.Place != "Haarlem" {
		t.Errorf("marriage = %+v", f.Marriage)
	}
	if fams[1].Marriage != nil {
		t.Error("family without marriage should have nil Marriage")
	}

	withKees, total, _ := db.ListFamilies(FamilyFilter{Person: "I3"})
	if total != 2 || len(withKees) != 2 {
		t.Errorf("person filter total = %d", total)
	}

	rel, err := db.Relatives("a.ged", "I3")
	if err != nil {
		t.Fatalf("Relatives: %v", err)
	}
	if len(rel.AsChild) != 1 || rel.AsChild[0].ID != "F1" {
		t.Errorf("as child = %+v", rel.AsChild)
	}
	if len(rel.AsParent) != 1 || rel.AsParent[0].ID != "F2" {
		t.Errorf("as parent = %+v", rel.AsParent)
	}
}

func TestReimportReplaces(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())
	_ = db.ImportDocument("a.ged", "2", &models.Document{Individuals: []models.Individual{{ID: "I5", GivenNames: "Piet"}}})

	_, total, _ := db.ListPersons(PersonFilter{Source: "a.ged"})
	if total != 1 {
		t.Errorf("persons after reimport = %d, want 1", total)
	}
	_, ftotal, _ := db.ListFamilies(FamilyFilter{Source: "a.ged"})
	if ftotal != 0 {
		t.Errorf("families after reimport = %d, want 0", ftotal)
	}
	cs, _ := db.AllChecksums()
	if cs["a.ged"] != "2" {
		t.Errorf("checksum = %q", cs["a.ged"])
	}
}

func TestDeleteSource(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())
	if err := db.DeleteSource("a.ged"); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	cs, _ := db.AllChecksums()
	if len(cs) != 0 {
		t.Errorf("checksums after delete = %v", cs)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM family_children`).Scan(&n)
	if n != 0 {
		t.Errorf("children rows left = %d", n)
	}
	if _, err := db.Document("a.ged"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Document err = %v, want ErrNotFound", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	db := testDB(t)
	want := sampleDoc()
	_ = db.ImportDocument("a.ged", "1", want)

	got, err := db.Document("a.ged")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(got.Individuals) != 3 || len(got.Families) != 2 {
		t.Fatalf("counts = %d/%d", len(got.Individuals), len(got.Families))
	}
	for i := range want.Individuals {
		if got.Individuals[i].ID != want.Individuals[i].ID {
			t.Errorf("individual %d id = %q, want %q", i, got.Individuals[i].ID, want.Individuals[i].ID)
		}
	}
	if got.Individuals[0].Death.Place != "Leiden" {
		t.Errorf("place not trimmed: %q", got.Individuals[0].Death.Place)
	}
	if got.Families[0].Marriage == nil || got.Families[0].Marriage.Date != "1825" {
		t.Errorf("marriage = %+v", got.Families[0].Marriage)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.ImportDocument("a.ged", "1", sampleDoc())

	results, err := db.Search("Molenaar", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "I1" {
		t.Errorf("search results = %+v, want 1 hit for I1", results)
	}
	if results[0].Name != "Jan van der Berg" {
		t.Errorf("name = %q", results[0].Name)
	}
}
