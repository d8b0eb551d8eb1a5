package catalog

import (
	"errors"
	"testing"

	"statement_analyzer/pkg/models"
)

func testDef(name, formula string) models.RatioDefinition {
	return models.RatioDefinition{
		Name:     name,
		Category: models.CategoryCustom,
		Formula:  formula,
		Unit:     models.UnitRatio,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryBackend())
}

func TestAdd_DerivesIDFromName(t *testing.T) {
	s := newTestStore(t)
	def, err := s.Add("u1", testDef("Cash Burn Rate", "cash / total_assets"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.ID != "cash_burn_rate" {
		t.Errorf("ID = %q, want cash_burn_rate", def.ID)
	}
	if !def.IsCustom {
		t.Error("IsCustom not set")
	}
	if def.CreatedAt.IsZero() || def.ModifiedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
}

func TestAdd_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("u1", testDef("My Ratio", "cash / revenue")); err != nil {
		t.Fatalf("first add: %v", err)
	}

	tests := []struct {
		name string
		def  models.RatioDefinition
	}{
		{"custom collision", testDef("My Ratio", "revenue / cash")},
		{"built-in collision", testDef("Current Ratio", "current_assets / current_liabilities")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add("u1", tc.def)
			var dup *models.DuplicateIDError
			if !errors.As(err, &dup) {
				t.Errorf("error = %v, want DuplicateIDError", err)
			}
		})
	}
}

func TestAdd_Validation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		def  models.RatioDefinition
	}{
		{"empty name", testDef("", "cash / revenue")},
		{"empty formula", testDef("X", "")},
		{"bad category", models.RatioDefinition{Name: "X", Category: "misc", Formula: "cash"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add("u1", tc.def)
			var v *models.ValidationError
			if !errors.As(err, &v) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}

	t.Run("bad formula", func(t *testing.T) {
		_, err := s.Add("u1", testDef("X", "cash +"))
		var syn *models.FormulaSyntaxError
		if !errors.As(err, &syn) {
			t.Errorf("error = %v, want FormulaSyntaxError", err)
		}
	})
}

func TestUpdate_PreservesIdentity(t *testing.T) {
	s := newTestStore(t)
	added, err := s.Add("u1", testDef("My Ratio", "cash / revenue"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	upd := testDef("Renamed Ratio", "cash / net_income")
	upd.ID = "should_be_ignored"
	got, err := s.Update("u1", added.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != added.ID {
		t.Errorf("ID = %q, want %q (immutable)", got.ID, added.ID)
	}
	if !got.CreatedAt.Equal(added.CreatedAt) {
		t.Error("CreatedAt not preserved")
	}
	if got.Formula != "cash / net_income" {
		t.Errorf("Formula = %q", got.Formula)
	}
}

func TestUpdateDelete_NotFound(t *testing.T) {
	s := newTestStore(t)
	var v *models.ValidationError
	if _, err := s.Update("u1", "nope", testDef("X", "cash")); !errors.As(err, &v) {
		t.Errorf("update error = %v, want ValidationError", err)
	}
	if err := s.Delete("u1", "nope"); !errors.As(err, &v) {
		t.Errorf("delete error = %v, want ValidationError", err)
	}
}

func TestDelete_RemovesRatio(t *testing.T) {
	s := newTestStore(t)
	added, _ := s.Add("u1", testDef("My Ratio", "cash / revenue"))
	if err := s.Delete("u1", added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get("u1", added.ID); found {
		t.Error("ratio still present after delete")
	}
}

func TestUserIsolation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("alice", testDef("Alice Only", "cash")); err != nil {
		t.Fatalf("add: %v", err)
	}
	defs, err := s.List("bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("bob sees %d ratios, want 0", len(defs))
	}
}

func TestImport_Replace(t *testing.T) {
	s := newTestStore(t)
	s.Add("u1", testDef("Old Ratio", "cash"))

	res, err := s.Import("u1", []models.RatioDefinition{
		testDef("New Ratio", "revenue / cash"),
	}, ImportReplace)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 1 imported", res)
	}
	defs, _ := s.List("u1")
	if len(defs) != 1 || defs[0].ID != "new_ratio" {
		t.Errorf("defs after replace = %+v", defs)
	}
}

func TestImport_MergeExistingWins(t *testing.T) {
	s := newTestStore(t)
	s.Add("u1", testDef("Shared Ratio", "cash / revenue"))

	incoming := []models.RatioDefinition{
		testDef("Shared Ratio", "revenue / cash"), // collides, must be skipped
		testDef("Fresh Ratio", "net_income / revenue"),
		testDef("", "cash"),                  // invalid: no name
		testDef("Current Ratio", "cash * 2"), // collides with built-in
	}
	res, err := s.Import("u1", incoming, ImportMerge)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1 (only fresh_ratio)", res.Imported)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", res.Skipped)
	}

	kept, found, _ := s.Get("u1", "shared_ratio")
	if !found {
		t.Fatal("shared_ratio gone after merge")
	}
	if kept.Formula != "cash / revenue" {
		t.Errorf("shared_ratio formula = %q, want the pre-existing one", kept.Formula)
	}
	if _, found, _ := s.Get("u1", "fresh_ratio"); !found {
		t.Error("fresh_ratio not imported")
	}
}

func TestImport_UnknownMode(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Import("u1", nil, ImportMode("upsert"))
	var v *models.ValidationError
	if !errors.As(err, &v) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.Add("u1", testDef("Ratio A", "cash / revenue"))
	s.Add("u1", testDef("Ratio B", "net_income / total_assets"))

	exported, err := s.Export("u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other := newTestStore(t)
	res, err := other.Import("u2", exported, ImportReplace)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("Imported = %d, want 2", res.Imported)
	}
	defs, _ := other.List("u2")
	if len(defs) != 2 || defs[0].ID != "ratio_a" || defs[1].ID != "ratio_b" {
		t.Errorf("round-trip defs = %+v", defs)
	}

	// The export format reproduces the stored set exactly, timestamps
	// included: import must not re-stamp definitions that carry them.
	for i := range exported {
		if !defs[i].CreatedAt.Equal(exported[i].CreatedAt) {
			t.Errorf("%s created_at changed across import: %v -> %v", defs[i].ID, exported[i].CreatedAt, defs[i].CreatedAt)
		}
		if !defs[i].ModifiedAt.Equal(exported[i].ModifiedAt) {
			t.Errorf("%s modified_at changed across import: %v -> %v", defs[i].ID, exported[i].ModifiedAt, defs[i].ModifiedAt)
		}
		if defs[i].Formula != exported[i].Formula || defs[i].Name != exported[i].Name {
			t.Errorf("%s fields changed across import", defs[i].ID)
		}
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	s := NewStore(backend)
	if _, err := s.Add("user@host", testDef("Disk Ratio", "cash")); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh store over the same directory sees the persisted set.
	again := NewStore(backend)
	defs, err := again.List("user@host")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "disk_ratio" {
		t.Errorf("defs = %+v", defs)
	}
}
