package auditchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"plan-review/internal/models"
)

// GenesisHash seeds every review chain
var GenesisHash = strings.Repeat("0", 64)

// Compute returns the chain hash of a closed record given its predecessor's hash
func Compute(prevHash string, rec *models.ReviewRecord) string {
	var reviewedAt int64
	if rec.ReviewedAt != nil {
		reviewedAt = rec.ReviewedAt.Unix()
	}

	chainInput := fmt.Sprintf("%s:%d:%d:%s:%s:%s:%s:%s:%d",
		prevHash,
		rec.ID,
		rec.OwnerID,
		rec.ReviewKind,
		rec.Action,
		rec.Comment,
		rec.ReviewerRef,
		rec.AssessorRef,
		reviewedAt,
	)
	sum := sha256.Sum256([]byte(chainInput))
	return hex.EncodeToString(sum[:])
}

// PreviousHash returns the hash of the latest closed record in history
func PreviousHash(history []models.ReviewRecord) string {
	prev := GenesisHash
	for _, r := range ordered(history) {
		if r.IsClosed() && r.ChainHash != "" {
			prev = r.ChainHash
		}
	}
	return prev
}

// Verify checks one (unit, review kind) chain.
// It returns every problem found; an empty result means the chain is intact.
func Verify(records []models.ReviewRecord) []string {
	var problems []string

	recs := ordered(records)
	prevHash := GenesisHash
	currentCount := 0

	for i, r := range recs {
		if i == 0 {
			if r.PreviousRecordID != nil {
				problems = append(problems, fmt.Sprintf("record %d: first record links predecessor %d", r.ID, *r.PreviousRecordID))
			}
		} else {
			want := recs[i-1].ID
			if r.PreviousRecordID == nil || *r.PreviousRecordID != want {
				problems = append(problems, fmt.Sprintf("record %d: previous record should be %d", r.ID, want))
			}
			if !recs[i-1].IsClosed() {
				problems = append(problems, fmt.Sprintf("record %d: superseded record %d was never reviewed", r.ID, want))
			}
		}

		if r.IsCurrent {
			currentCount++
			if i != len(recs)-1 {
				problems = append(problems, fmt.Sprintf("record %d: current record is not the latest", r.ID))
			}
		}

		if !r.IsClosed() {
			if r.ChainHash != "" {
				problems = append(problems, fmt.Sprintf("record %d: open record carries a chain hash", r.ID))
			}
			continue
		}

		expected := Compute(prevHash, &r)
		if r.ChainHash != expected {
			problems = append(problems, fmt.Sprintf("record %d: chain hash mismatch", r.ID))
		}
		prevHash = r.ChainHash
	}

	if len(recs) > 0 && currentCount != 1 {
		problems = append(problems, fmt.Sprintf("expected exactly one current record, found %d", currentCount))
	}

	return problems
}

func ordered(records []models.ReviewRecord) []models.ReviewRecord {
	out := make([]models.ReviewRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
