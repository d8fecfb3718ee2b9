package registry

import "gopkg.in/yaml.v3"

// Anchor relations.
const (
	RelationWithin = "within" // element is a descendant of the anchor
	RelationNear   = "near"   // element is a following sibling of the anchor
)

// Anchor is a structural hint: a selector for a stable nearby element
// the target can be located relative to when its own markup drifts.
type Anchor struct {
	Selector string `yaml:"selector"`
	Relation string `yaml:"relation"` // within (default), near
}

// Entry describes everything registered for one semantic id.
// Pure data structure - strategies decide how to use it.
type Entry struct {
	// Explicit selectors, confidence 1.0 when they verify.
	TestID string `yaml:"testId"`
	CSS    string `yaml:"css"`
	XPath  string `yaml:"xpath"`

	// Hints for fallback strategies.
	Text        string   `yaml:"text"`        // visible text of the element
	Tag         string   `yaml:"tag"`         // expected element tag (button, input, ...)
	Anchors     []Anchor `yaml:"anchors"`     // structural anchors
	Description string   `yaml:"description"` // human-readable description for semantic matching
}

// entryRaw mirrors Entry for struct-form YAML parsing.
type entryRaw struct {
	TestID      string   `yaml:"testId"`
	CSS         string   `yaml:"css"`
	XPath       string   `yaml:"xpath"`
	Text        string   `yaml:"text"`
	Tag         string   `yaml:"tag"`
	Anchors     []Anchor `yaml:"anchors"`
	Description string   `yaml:"description"`
}

// UnmarshalYAML allows Entry to be unmarshaled from string or struct.
// A bare string is shorthand for a test id.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.TestID = node.Value
		return nil
	}

	var raw entryRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	e.TestID = raw.TestID
	e.CSS = raw.CSS
	e.XPath = raw.XPath
	e.Text = raw.Text
	e.Tag = raw.Tag
	e.Anchors = raw.Anchors
	e.Description = raw.Description
	return nil
}

// IsEmpty returns true if nothing usable is registered.
func (e *Entry) IsEmpty() bool {
	return e.TestID == "" &&
		e.CSS == "" &&
		e.XPath == "" &&
		e.Text == "" &&
		len(e.Anchors) == 0 &&
		e.Description == ""
}

// HasExplicitSelector returns true if a deterministic selector is registered.
func (e *Entry) HasExplicitSelector() bool {
	return e.TestID != "" || e.CSS != "" || e.XPath != ""
}
