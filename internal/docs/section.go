package docs

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ManagedSection represents a section of content managed by automation.
type ManagedSection struct {
	Name       string // Section name (e.g., "NIX OPTIONS")
	Content    string // Content between markers
	StartLine  int    // Line number of start marker
	EndLine    int    // Line number of end marker
	StartIndex int    // Character index of start marker
	EndIndex   int    // Character index of end marker (after end marker)
}

// MarkerConfig defines the marker names for managed sections.
type MarkerConfig struct {
	Options string
}

// DefaultMarkers returns the default marker configuration.
func DefaultMarkers() MarkerConfig {
	return MarkerConfig{
		Options: "NIX OPTIONS",
	}
}

var (
	beginRe = regexp.MustCompile(`<!-- BEGIN ([^>]+) -->`)
	endRe   = regexp.MustCompile(`<!-- END ([^>]+) -->`)
)

func startMarker(name string) string { return fmt.Sprintf("<!-- BEGIN %s -->", name) }
func endMarker(name string) string   { return fmt.Sprintf("<!-- END %s -->", name) }

// FindManagedSection finds a managed section in the given content.
// Returns nil if the section is not found.
func FindManagedSection(content, sectionName string) *ManagedSection {
	start, end := startMarker(sectionName), endMarker(sectionName)

	startIdx := strings.Index(content, start)
	if startIdx == -1 {
		return nil
	}

	endIdx := strings.Index(content[startIdx:], end)
	if endIdx == -1 {
		return nil
	}
	endIdx += startIdx + len(end)

	contentStart := startIdx + len(start)
	contentEnd := endIdx - len(end)

	return &ManagedSection{
		Name:       sectionName,
		Content:    content[contentStart:contentEnd],
		StartLine:  strings.Count(content[:startIdx], "\n") + 1,
		EndLine:    strings.Count(content[:endIdx], "\n") + 1,
		StartIndex: startIdx,
		EndIndex:   endIdx,
	}
}

// UpdateManagedSection replaces the content of a managed section.
// Returns the updated full content.
func UpdateManagedSection(content, sectionName, newContent string) (string, error) {
	section := FindManagedSection(content, sectionName)
	if section == nil {
		return "", fmt.Errorf("managed section %q not found", sectionName)
	}

	var builder strings.Builder
	builder.WriteString(content[:section.StartIndex])
	builder.WriteString(CreateManagedSection(sectionName, newContent))
	builder.WriteString(content[section.EndIndex:])

	return builder.String(), nil
}

// HasManagedSection checks if a managed section exists in the content.
func HasManagedSection(content, sectionName string) bool {
	return FindManagedSection(content, sectionName) != nil
}

// CreateManagedSection creates a new managed section with the given content.
// Returns the markers with content, ready to be inserted.
func CreateManagedSection(sectionName, content string) string {
	var builder strings.Builder
	builder.WriteString(startMarker(sectionName))
	builder.WriteString("\n")
	builder.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(endMarker(sectionName))
	return builder.String()
}

// AppendManagedSection adds a new managed section at the end of content,
// separated from existing text by a blank line.
func AppendManagedSection(content, sectionName, newContent string) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimRight(content, "\n"))
	if builder.Len() > 0 {
		builder.WriteString("\n\n")
	}
	builder.WriteString(CreateManagedSection(sectionName, newContent))
	builder.WriteString("\n")
	return builder.String()
}

// ValidateManagedSections checks that all managed sections have matching
// markers. Problems are returned sorted.
func ValidateManagedSections(content string) []string {
	beginNames := make(map[string]bool)
	endNames := make(map[string]bool)
	for _, match := range beginRe.FindAllStringSubmatch(content, -1) {
		beginNames[match[1]] = true
	}
	for _, match := range endRe.FindAllStringSubmatch(content, -1) {
		endNames[match[1]] = true
	}

	var problems []string
	for name := range beginNames {
		if !endNames[name] {
			problems = append(problems, fmt.Sprintf("missing END marker for %q", name))
		}
	}
	for name := range endNames {
		if !beginNames[name] {
			problems = append(problems, fmt.Sprintf("missing BEGIN marker for %q", name))
		}
	}
	slices.Sort(problems)
	return problems
}
