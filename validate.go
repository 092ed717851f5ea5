package umat

import (
	"fmt"
	"strings"
)

// IssueLevel represents severity of validation issue.
type IssueLevel string

const (
	// IssueError indicates a validation error.
	IssueError IssueLevel = "error"
	// IssueWarning indicates a validation warning.
	IssueWarning IssueLevel = "warning"
)

// Issue represents a validation issue.
type Issue struct {
	Level   IssueLevel `json:"level" yaml:"level"`                   // Severity level
	Code    string     `json:"code,omitempty" yaml:"code,omitempty"` // Machine-readable code
	Message string     `json:"message" yaml:"message"`               // Issue message
	Path    string     `json:"path,omitempty" yaml:"path,omitempty"` // Affected field
}

// Validate checks a record for values that compile to nothing useful or
// break the compiler's arithmetic.
func Validate(m Material, opt *ValidateOptions) []Issue {
	if m == nil {
		return nil
	}
	vopt := opt.normalize()
	var out []Issue

	out = append(out, checkSelfReferences(m)...)

	switch r := m.(type) {
	case *Texture:
		out = append(out, validateTexture(r, vopt)...)
	case *Cubemap:
		out = append(out, validateTexture(&r.Texture, vopt)...)
	case *FadeColor:
		if r.FadePeriod <= 0 {
			out = append(out, Issue{Level: IssueWarning, Code: "fade_period", Message: "FadePeriod must be positive", Path: "FadePeriod"})
		}
	case *Combiner:
		if !vopt.DisableReferenceCheck && r.Material1 == nil && r.Material2 == nil {
			out = append(out, Issue{Level: IssueWarning, Code: "missing_reference", Message: "combiner has neither material", Path: "Material1"})
		}
	case *TexScaler:
		if r.UScale == 0 {
			out = append(out, Issue{Level: IssueError, Code: "zero_scale", Message: "UScale is zero", Path: "UScale"})
		}
		if r.VScale == 0 {
			out = append(out, Issue{Level: IssueError, Code: "zero_scale", Message: "VScale is zero", Path: "VScale"})
		}
	case *TexCoordSource:
		if r.SourceChannel < 0 {
			out = append(out, Issue{Level: IssueError, Code: "source_channel", Message: "SourceChannel is negative", Path: "SourceChannel"})
		}
	case *MaterialSwitch:
		if len(r.Materials) == 0 {
			out = append(out, Issue{Level: IssueWarning, Code: "empty_list", Message: "switch has no materials", Path: "Materials"})
		} else if r.Current < 0 || r.Current >= len(r.Materials) {
			out = append(out, Issue{Level: IssueWarning, Code: "out_of_range", Message: fmt.Sprintf("Current %d outside [0,%d)", r.Current, len(r.Materials)), Path: "Current"})
		}
	case *MaterialSequence:
		if len(r.SequenceItems) == 0 {
			out = append(out, Issue{Level: IssueWarning, Code: "empty_list", Message: "sequence has no items", Path: "SequenceItems"})
		} else if r.TotalTime() <= 0 {
			out = append(out, Issue{Level: IssueWarning, Code: "zero_duration", Message: "sequence items have no duration", Path: "SequenceItems"})
		}
	}

	if !vopt.DisableReferenceCheck && wrapsMaterial(m) && modifierOf(m).Material == nil {
		out = append(out, Issue{Level: IssueWarning, Code: "missing_reference", Message: "modifier has no Material", Path: "Material"})
	}

	return out
}

// validateTexture validates a texture.
func validateTexture(t *Texture, opt ValidateOptions) []Issue {
	if opt.DisableSizeCheck {
		return nil
	}
	if t.UClamp <= 0 || t.VClamp <= 0 {
		return []Issue{{Level: IssueWarning, Code: "no_size", Message: "texture has no declared size", Path: "UClamp"}}
	}
	return nil
}

// modifierOf returns the embedded Modifier of modifier records.
func modifierOf(m Material) *Modifier {
	type modifier interface{ modifier() *Modifier }
	if mm, ok := m.(modifier); ok {
		return mm.modifier()
	}
	return nil
}

func (m *Modifier) modifier() *Modifier { return m }

// wrapsMaterial reports whether the record's output comes from its Material field.
// Switches and sequences select from their own lists instead.
func wrapsMaterial(m Material) bool {
	switch m.(type) {
	case *MaterialSwitch, *MaterialSequence:
		return false
	}
	return modifierOf(m) != nil
}

// checkSelfReferences reports reference fields that point back at the record.
func checkSelfReferences(m Material) []Issue {
	self := m.Ref().ObjectPath()
	var out []Issue
	for name, ref := range References(m) {
		if strings.EqualFold(ref.ObjectPath(), self) {
			out = append(out, Issue{Level: IssueError, Code: "self_reference", Message: "record references itself", Path: name})
		}
	}
	return out
}
