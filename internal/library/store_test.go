// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"testing"
	"time"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(types.LibraryConfig{Dir: t.TempDir(), MaxResults: 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecords() []types.Record {
	return []types.Record{
		{
			Title:                    "Deep Residual Learning",
			Authors:                  []string{"Kaiming He", "Xiangyu Zhang"},
			Year:                     2016,
			Abstract:                 "Deeper neural networks are more difficult to train.",
			CitationCount:            150000,
			InfluentialCitationCount: 20000,
			IsOpenAccess:             true,
			PDFURL:                   "https://example.org/resnet.pdf",
			Venue:                    "CVPR",
			DOI:                      "10.1109/CVPR.2016.90",
			SourceID:                 "abc123",
			URL:                      "https://www.semanticscholar.org/paper/abc123",
			Source:                   "semantic_scholar",
			QualityScore:             180.4,
		},
		{
			Title:        "Synaptic plasticity in the hippocampus",
			Authors:      []string{"Maria Garcia"},
			Year:         2021,
			Abstract:     "Plasticity underlies learning.",
			Venue:        "Nature Neuroscience",
			DOI:          "10.1038/nn.1234",
			SourceID:     "12345678",
			Source:       "pubmed",
			QualityScore: 27.0,
		},
	}
}

// --- Save and retrieve ---

func TestSaveAndRecordsRoundTrip(t *testing.T) {
	store := testStore(t)

	qs := types.QuerySet{
		Queries: []string{"residual networks", "deep learning optimization"},
		Field:   "machine learning",
	}
	runID, err := store.Save("deep residual networks", qs, sampleRecords())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("runID = %d, want positive", runID)
	}

	records, err := store.Records(runID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r := records[0]
	if r.Title != "Deep Residual Learning" {
		t.Errorf("Title = %q", r.Title)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Kaiming He" {
		t.Errorf("Authors = %v", r.Authors)
	}
	if r.CitationCount != 150000 || r.InfluentialCitationCount != 20000 {
		t.Errorf("citation counts = %d/%d", r.CitationCount, r.InfluentialCitationCount)
	}
	if !r.IsOpenAccess {
		t.Error("IsOpenAccess lost in round trip")
	}
	if r.QualityScore != 180.4 {
		t.Errorf("QualityScore = %f", r.QualityScore)
	}
	if r.DOI != "10.1109/CVPR.2016.90" {
		t.Errorf("DOI = %q", r.DOI)
	}

	// Saved (rank) order preserved.
	if records[1].Source != "pubmed" {
		t.Errorf("records[1].Source = %q, want pubmed", records[1].Source)
	}
}

func TestRunsListing(t *testing.T) {
	store := testStore(t)

	first, err := store.Save("topic one", types.QuerySet{Queries: []string{"q1"}, Field: "physics"}, sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save("topic two", types.QuerySet{Queries: []string{"q2", "q3"}}, sampleRecords()[:1])
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	// Most recent first.
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("run order = %d, %d; want %d, %d", runs[0].ID, runs[1].ID, second, first)
	}
	if runs[0].Topic != "topic two" {
		t.Errorf("Topic = %q", runs[0].Topic)
	}
	if runs[0].Records != 1 || runs[1].Records != 2 {
		t.Errorf("record counts = %d/%d, want 1/2", runs[0].Records, runs[1].Records)
	}
	if len(runs[0].Queries) != 2 {
		t.Errorf("Queries = %v, want 2 entries", runs[0].Queries)
	}
	if runs[1].Field != "physics" {
		t.Errorf("Field = %q", runs[1].Field)
	}
	if time.Since(runs[0].Saved) > time.Minute {
		t.Errorf("Saved = %v, want recent", runs[0].Saved)
	}
}

func TestRunsEmptyLibrary(t *testing.T) {
	store := testStore(t)

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestRecordsUnknownRun(t *testing.T) {
	store := testStore(t)

	records, err := store.Records(999)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

// --- Find ---

func TestFindMatchesTitleAndAbstract(t *testing.T) {
	store := testStore(t)
	if _, err := store.Save("topic", types.QuerySet{}, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	byTitle, err := store.Find("Residual")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Deep Residual Learning" {
		t.Errorf("Find by title = %v", byTitle)
	}

	byAbstract, err := store.Find("underlies learning")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(byAbstract) != 1 || byAbstract[0].Source != "pubmed" {
		t.Errorf("Find by abstract = %v", byAbstract)
	}
}

func TestFindOrdersByScoreAndCaps(t *testing.T) {
	store, err := Open(types.LibraryConfig{Dir: t.TempDir(), MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.Save("topic", types.QuerySet{}, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	// Both records contain "learning"; only the higher-scored one returns.
	found, err := store.Find("learning")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("len(found) = %d, want 1 (capped)", len(found))
	}
	if found[0].Title != "Deep Residual Learning" {
		t.Errorf("found[0].Title = %q, want highest score first", found[0].Title)
	}
}

func TestFindNoMatches(t *testing.T) {
	store := testStore(t)
	if _, err := store.Save("topic", types.QuerySet{}, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	found, err := store.Find("zzz-no-such-term")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("len(found) = %d, want 0", len(found))
	}
}
