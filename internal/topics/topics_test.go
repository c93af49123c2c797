package topics

import (
	"os"
	"path/filepath"
	"testing"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() returned error: %v", err)
	}
	return reg
}

func TestDefaultRegistry(t *testing.T) {
	reg := mustDefault(t)

	want := []models.Topic{
		"conditions", "pre_commencement_conditions", "informatives", "heads_of_terms",
		"policy_classes", "considerations", "immunity", "permitted_development_rights",
		"committee_decision", "neighbour_summary",
	}
	got := reg.Topics()
	if len(got) != len(want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %s, want %s", i, got[i], want[i])
		}
	}

	immunity, err := reg.Lookup("immunity")
	if err != nil {
		t.Fatalf("Lookup(immunity) returned error: %v", err)
	}
	if !immunity.HasReviewKind(models.ReviewKindEvidence) || !immunity.HasReviewKind(models.ReviewKindEnforcement) {
		t.Errorf("immunity kinds = %v", immunity.ReviewKinds())
	}

	conditions, _ := reg.Lookup("conditions")
	if kinds := conditions.ReviewKinds(); len(kinds) != 1 || kinds[0] != models.ReviewKindAssessment {
		t.Errorf("conditions kinds = %v, want [assessment]", kinds)
	}

	if _, err := reg.Rules("unknown"); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for unknown topic, got %v", err)
	}
}

func TestValidateCompletion(t *testing.T) {
	reg := mustDefault(t)
	conditions, _ := reg.Lookup("conditions")
	committee, _ := reg.Lookup("committee_decision")

	tests := []struct {
		name      string
		def       *Definition
		unit      models.ReviewableUnit
		children  []models.Child
		wantField string
	}{
		{
			name:      "empty list",
			def:       conditions,
			wantField: "children",
		},
		{
			name: "child missing reason",
			def:  conditions,
			children: []models.Child{
				{ID: 1, Position: 1, Content: models.Fields{"text": "a", "reason": "b"}},
				{ID: 2, Position: 2, Content: models.Fields{"text": "c"}},
			},
			wantField: "children[2].reason",
		},
		{
			name: "complete list",
			def:  conditions,
			children: []models.Child{
				{ID: 1, Position: 1, Content: models.Fields{"text": "a", "reason": "b"}},
			},
		},
		{
			name:      "unit field missing",
			def:       committee,
			unit:      models.ReviewableUnit{Content: models.Fields{"recommendation": "granted"}},
			wantField: "content.reasons",
		},
		{
			name: "unit fields present",
			def:  committee,
			unit: models.ReviewableUnit{Content: models.Fields{"recommendation": "granted", "reasons": "policy compliant"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.ValidateCompletion(&tt.unit, tt.children)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateCompletion returned error: %v", err)
				}
				return
			}
			ae, ok := apperror.As(err)
			if !ok || ae.Kind != apperror.KindNotReady {
				t.Fatalf("expected not ready, got %v", err)
			}
			if ae.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ae.Field, tt.wantField)
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	reg := mustDefault(t)
	committee, _ := reg.Lookup("committee_decision")
	informatives, _ := reg.Lookup("informatives")

	if err := committee.ValidateFields(models.Fields{"recommendation": "granted"}); err != nil {
		t.Errorf("valid delta rejected: %v", err)
	}
	if err := committee.ValidateFields(models.Fields{"recommendation": ""}); err != nil {
		t.Errorf("clearing a field rejected: %v", err)
	}
	if err := committee.ValidateFields(models.Fields{"recommendation": "maybe"}); !apperror.IsKind(err, apperror.KindInvalid) {
		t.Errorf("expected invalid value, got %v", err)
	}
	if err := committee.ValidateFields(models.Fields{"colour": "red"}); !apperror.IsKind(err, apperror.KindInvalid) {
		t.Errorf("expected unknown field, got %v", err)
	}
	if err := committee.ValidateChild(models.Fields{"text": "x"}); !apperror.IsKind(err, apperror.KindInvalid) {
		t.Errorf("expected topic without items to reject children, got %v", err)
	}
	if err := informatives.ValidateChild(models.Fields{"title": "t", "text": "x"}); err != nil {
		t.Errorf("valid child rejected: %v", err)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no topics", "topics: []"},
		{"missing name", "topics:\n  - title: x\n"},
		{"duplicate", "topics:\n  - name: a\n  - name: a\n"},
		{"required not declared", "topics:\n  - name: a\n    required_unit_fields: [x]\n"},
		{"items on itemless topic", "topics:\n  - name: a\n    min_children: 1\n"},
		{"bad yaml", "topics: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("expected error for %q", tt.doc)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	doc := "topics:\n  - name: s106\n    children: true\n    child_fields: [text]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("failed to write topics file: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if topics := reg.Topics(); len(topics) != 1 || topics[0] != "s106" {
		t.Errorf("topics = %v", topics)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}

	if reg, err := Load(""); err != nil || len(reg.Topics()) == 0 {
		t.Errorf("empty path should load defaults, got %v", err)
	}
}
