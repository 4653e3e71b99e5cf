package model

import "testing"

func TestRunReportMerge(t *testing.T) {
	r := NewRunReport("run-1")
	r.Merge(ChunkResult{Index: 0, Outcomes: []FileOutcome{
		{File: "1.json", Status: OutcomePersisted, Variant: VariantA1},
		{File: "2.json", Status: OutcomeFailed, Reason: "decode"},
		{File: "3.json", Status: OutcomeSkipped, Reason: "unsupported"},
	}})
	r.Merge(ChunkResult{Index: 1, Outcomes: []FileOutcome{
		{File: "4.json", Status: OutcomePersisted, Variant: VariantX},
		{File: "5.json", Status: OutcomeRejected, Variant: VariantA1, Reason: "E11000"},
		{File: "6.json", Status: OutcomePersisted, Variant: VariantA1},
	}})

	if r.Succeeded[VariantA1] != 2 || r.Succeeded[VariantX] != 1 || r.SucceededTotal() != 3 {
		t.Fatalf("succeeded = %v", r.Succeeded)
	}
	if len(r.AbnormalFiles) != 1 || r.AbnormalFiles[0] != (AbnormalFile{File: "2.json", Error: "decode"}) {
		t.Fatalf("abnormal = %+v", r.AbnormalFiles)
	}
	if len(r.SkippedFiles) != 1 || len(r.RejectedFiles) != 1 || r.RejectedFiles[0].File != "5.json" {
		t.Fatalf("skipped = %+v rejected = %+v", r.SkippedFiles, r.RejectedFiles)
	}
}

func TestNewSyncRun(t *testing.T) {
	r := NewRunReport("run-2")
	r.TotalFiles = 3
	r.Succeeded[VariantA2] = 1
	r.AbnormalFiles = []AbnormalFile{{File: "bad.json", Error: "decode"}}
	r.SkippedFiles = []AbnormalFile{{File: "a3.json", Error: "unsupported"}}

	run, err := NewSyncRun(r)
	if err != nil {
		t.Fatalf("NewSyncRun: %v", err)
	}
	if run.ID != "run-2" || run.Succeeded != 1 || run.Abnormal != 1 || run.Skipped != 1 {
		t.Fatalf("run = %+v", run)
	}
	if string(run.Counts) != `{"A2":1}` {
		t.Fatalf("counts = %s", run.Counts)
	}
	if len(run.Files) != 2 || run.Files[0].Kind != RunFileAbnormal || run.Files[1].RunID != "run-2" {
		t.Fatalf("files = %+v", run.Files)
	}
}

func TestVariantHelpers(t *testing.T) {
	if v, ok := ParseVariant("a1"); !ok || v != VariantA1 {
		t.Fatalf("ParseVariant(a1) = %s, %v", v, ok)
	}
	if v, ok := ParseVariant("x"); !ok || v != VariantX {
		t.Fatalf("ParseVariant(x) = %s, %v", v, ok)
	}
	if _, ok := ParseVariant("c"); ok {
		t.Fatal("c is not a variant")
	}
	for _, v := range Variants {
		if v.Collection() == "" {
			t.Fatalf("%s has no collection", v)
		}
	}
	if VariantA3.Flat() || VariantB.Flat() || !VariantA1.Flat() {
		t.Fatal("Flat is wrong")
	}
}

func TestBatchBuckets(t *testing.T) {
	b := NewBatch()
	b.Add("1.json", A1{Type: VariantA1})
	b.Add("2.json", X{Type: VariantX})
	b.Add("3.json", A1{Type: VariantA1})

	if b.Len() != 3 {
		t.Fatalf("len = %d", b.Len())
	}
	bucket := b.Bucket(VariantA1)
	if bucket == nil || len(bucket.Quizzes) != 2 || bucket.Files[1] != "3.json" {
		t.Fatalf("a1 bucket = %+v", bucket)
	}
	if b.Bucket(VariantB) != nil {
		t.Fatal("empty bucket should be nil")
	}
}
