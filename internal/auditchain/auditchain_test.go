package auditchain

import (
	"strings"
	"testing"
	"time"

	"plan-review/internal/models"
)

func closedRecord(id uint, prev *uint, action models.ReviewAction, comment string, at time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		ID:               id,
		OwnerID:          5,
		ReviewKind:       models.ReviewKindAssessment,
		ReviewStatus:     models.ReviewStatusReviewed,
		Action:           action,
		Comment:          comment,
		ReviewerRef:      "reviewer-1",
		AssessorRef:      "officer-1",
		ReviewedAt:       &at,
		PreviousRecordID: prev,
	}
}

func buildChain() []models.ReviewRecord {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	one, two := uint(1), uint(2)

	recs := []models.ReviewRecord{
		closedRecord(1, nil, models.ActionRejected, "fix X", at),
		closedRecord(2, &one, models.ActionRejected, "fix Y", at.Add(time.Hour)),
		{ID: 3, OwnerID: 5, ReviewKind: models.ReviewKindAssessment, ReviewStatus: models.ReviewStatusNotReviewed, Action: models.ActionNone, AssessorRef: "officer-1", PreviousRecordID: &two, IsCurrent: true},
	}

	prev := GenesisHash
	for i := range recs {
		if recs[i].IsClosed() {
			recs[i].ChainHash = Compute(prev, &recs[i])
			prev = recs[i].ChainHash
		}
	}
	return recs
}

func TestVerifyIntactChain(t *testing.T) {
	if problems := Verify(buildChain()); len(problems) != 0 {
		t.Fatalf("expected intact chain, got %v", problems)
	}
}

func TestVerifyDetectsTamperedComment(t *testing.T) {
	recs := buildChain()
	recs[0].Comment = "something else"

	problems := Verify(recs)
	if len(problems) == 0 {
		t.Fatalf("expected tampering to be detected")
	}
	if !strings.Contains(problems[0], "record 1") {
		t.Errorf("problem should name record 1: %v", problems)
	}
}

func TestVerifyDetectsBrokenLinks(t *testing.T) {
	recs := buildChain()
	recs[2].PreviousRecordID = nil

	if problems := Verify(recs); len(problems) == 0 {
		t.Fatalf("expected broken link to be detected")
	}
}

func TestVerifyDetectsTwoCurrentRecords(t *testing.T) {
	recs := buildChain()
	recs[1].IsCurrent = true

	problems := Verify(recs)
	found := false
	for _, p := range problems {
		if strings.Contains(p, "exactly one current") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected current-count problem, got %v", problems)
	}
}

func TestPreviousHash(t *testing.T) {
	if got := PreviousHash(nil); got != GenesisHash {
		t.Errorf("empty history = %s, want genesis", got)
	}
	recs := buildChain()
	if got := PreviousHash(recs); got != recs[1].ChainHash {
		t.Errorf("PreviousHash = %s, want hash of record 2", got)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	rec := buildChain()[0]
	if Compute(GenesisHash, &rec) != Compute(GenesisHash, &rec) {
		t.Fatal("hash must be deterministic")
	}
	if Compute(GenesisHash, &rec) == Compute(strings.Repeat("1", 64), &rec) {
		t.Fatal("hash must depend on predecessor")
	}
}
