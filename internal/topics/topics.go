package topics

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
	"plan-review/pkg/validator"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopics []byte

// Rules is what the workflow needs to know about a sub-topic
type Rules interface {
	ReviewKinds() []models.ReviewKind
	HasReviewKind(kind models.ReviewKind) bool
	HoldsChildren() bool
	Sendable() bool
	ValidateFields(fields models.Fields) error
	ValidateChild(content models.Fields) error
	ValidateCompletion(unit *models.ReviewableUnit, children []models.Child) error
}

// Definition describes the content rules of one sub-topic
type Definition struct {
	Name                models.Topic        `yaml:"name"`
	Title               string              `yaml:"title"`
	Kinds               []models.ReviewKind `yaml:"review_kinds"`
	Children            bool                `yaml:"children"`
	MinChildren         int                 `yaml:"min_children"`
	UnitFields          []string            `yaml:"unit_fields"`
	RequiredUnitFields  []string            `yaml:"required_unit_fields"`
	ChildFields         []string            `yaml:"child_fields"`
	RequiredChildFields []string            `yaml:"required_child_fields"`
	FieldValues         map[string][]string `yaml:"field_values"`
	SentToApplicant     bool                `yaml:"sendable"`
}

type document struct {
	Topics []Definition `yaml:"topics"`
}

// Registry holds the known sub-topics
type Registry struct {
	defs  map[models.Topic]*Definition
	order []models.Topic
}

// Default returns the registry built from the embedded topic file
func Default() (*Registry, error) {
	return Parse(defaultTopics)
}

// Load reads topic definitions from path, or the embedded defaults if path is empty
func Load(path string) (*Registry, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Default()
	}
	data, err := os.ReadFile(filepath.Clean(trimmed))
	if err != nil {
		return nil, fmt.Errorf("topics: read %s: %w", trimmed, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("topics: %s: %w", trimmed, err)
	}
	return reg, nil
}

// Parse decodes and validates a topic document
func Parse(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("topics: document is empty")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("topics: decode: %w", err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("topics: no topics defined")
	}

	reg := &Registry{defs: make(map[models.Topic]*Definition, len(doc.Topics))}
	for i := range doc.Topics {
		def := doc.Topics[i].normalized()
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.defs[def.Name]; dup {
			return nil, fmt.Errorf("topics: duplicate topic %q", def.Name)
		}
		reg.defs[def.Name] = &def
		reg.order = append(reg.order, def.Name)
	}
	return reg, nil
}

// Rules returns the rules for topic
func (r *Registry) Rules(topic models.Topic) (Rules, error) {
	def, err := r.Lookup(topic)
	if err != nil {
		return nil, err
	}
	return def, nil
}

// Lookup returns the definition for topic
func (r *Registry) Lookup(topic models.Topic) (*Definition, error) {
	def, ok := r.defs[topic]
	if !ok {
		return nil, apperror.NotFound(fmt.Sprintf("unknown topic %q", topic))
	}
	return def, nil
}

// Topics returns topic names in file order
func (r *Registry) Topics() []models.Topic {
	out := make([]models.Topic, len(r.order))
	copy(out, r.order)
	return out
}

func (d Definition) normalized() Definition {
	d.Name = models.Topic(strings.TrimSpace(string(d.Name)))
	if len(d.Kinds) == 0 {
		d.Kinds = []models.ReviewKind{models.ReviewKindAssessment}
	}
	if d.Title == "" {
		d.Title = string(d.Name)
	}
	return d
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("topics: topic name is required")
	}
	if !d.Children && (d.MinChildren > 0 || len(d.ChildFields) > 0 || d.SentToApplicant) {
		return fmt.Errorf("topics: %s: item rules set on a topic without items", d.Name)
	}
	if d.MinChildren < 0 {
		return fmt.Errorf("topics: %s: min_children must not be negative", d.Name)
	}
	if missing := subset(d.RequiredUnitFields, d.UnitFields); len(missing) > 0 {
		return fmt.Errorf("topics: %s: required unit fields not declared: %s", d.Name, strings.Join(missing, ", "))
	}
	if missing := subset(d.RequiredChildFields, d.ChildFields); len(missing) > 0 {
		return fmt.Errorf("topics: %s: required item fields not declared: %s", d.Name, strings.Join(missing, ", "))
	}
	seen := map[models.ReviewKind]bool{}
	for _, k := range d.Kinds {
		if k == "" || seen[k] {
			return fmt.Errorf("topics: %s: review kinds must be unique and non-empty", d.Name)
		}
		seen[k] = true
	}
	return nil
}

// ReviewKinds returns the independent review tracks of the topic
func (d *Definition) ReviewKinds() []models.ReviewKind {
	out := make([]models.ReviewKind, len(d.Kinds))
	copy(out, d.Kinds)
	return out
}

// HasReviewKind reports whether kind is one of the topic's tracks
func (d *Definition) HasReviewKind(kind models.ReviewKind) bool {
	for _, k := range d.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (d *Definition) HoldsChildren() bool { return d.Children }
func (d *Definition) Sendable() bool      { return d.SentToApplicant }

// ValidateFields checks a unit-level delta against the declared fields
func (d *Definition) ValidateFields(fields models.Fields) error {
	return d.checkFields(fields, d.UnitFields, "content")
}

// ValidateChild checks item content against the declared item fields
func (d *Definition) ValidateChild(content models.Fields) error {
	if !d.Children {
		return apperror.Invalid("children", fmt.Sprintf("topic %s does not hold items", d.Name))
	}
	return d.checkFields(content, d.ChildFields, "item")
}

// ValidateCompletion reports the first reason the unit cannot be marked complete
func (d *Definition) ValidateCompletion(unit *models.ReviewableUnit, children []models.Child) error {
	if missing := validator.MissingFields(unit.Content, d.RequiredUnitFields); len(missing) > 0 {
		return apperror.NotReady("content."+missing[0], "required field is missing")
	}

	if !d.Children {
		return nil
	}
	if len(children) < d.MinChildren {
		return apperror.NotReady("children", fmt.Sprintf("at least %d item(s) required", d.MinChildren))
	}

	sorted := make([]models.Child, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	for _, c := range sorted {
		if missing := validator.MissingFields(c.Content, d.RequiredChildFields); len(missing) > 0 {
			return apperror.NotReady(fmt.Sprintf("children[%d].%s", c.Position, missing[0]), "required field is missing")
		}
	}
	return nil
}

func (d *Definition) checkFields(fields models.Fields, allowed []string, scope string) error {
	if unknown := validator.UnknownFields(fields, allowed); len(unknown) > 0 {
		return apperror.Invalid(scope+"."+unknown[0], "unknown field")
	}
	for _, name := range models.Fields(fields).Keys() {
		value := fields[name]
		options, restricted := d.FieldValues[name]
		if !restricted || value == "" {
			continue
		}
		if !contains(options, value) {
			return apperror.Invalid(scope+"."+name, "must be one of "+strings.Join(options, ", "))
		}
	}
	return nil
}

func subset(items, of []string) []string {
	var missing []string
	for _, it := range items {
		if !contains(of, it) {
			missing = append(missing, it)
		}
	}
	return missing
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
