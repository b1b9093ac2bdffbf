package chunk

import (
	"regexp"
	"strings"
)

// Segment is one structurally delimited region of a document.
type Segment struct {
	Label string // section heading or speaker name, empty if unknown
	Text  string
}

// Template performs document-type-specific structural segmentation.
// Segmentation is a best-effort optimization: a template that recognizes
// nothing falls back to returning the whole text as a single segment.
type Template interface {
	Name() string
	Segment(text string) []Segment
}

// Template names understood by the default chunker.
const (
	TemplateContract   = "contract"
	TemplateBrief      = "brief"
	TemplateTranscript = "transcript"
	TemplateGeneric    = "generic"
)

var (
	contractHeading = regexp.MustCompile(`(?i)^\s*(article|section)\s+[ivxlcdm\d]+(\.\d+)*\b.*$|^\s*\d+(\.\d+)+\s+\S.*$`)
	briefHeading    = regexp.MustCompile(`^\s*[IVXLCDM]+\.\s+\S.*$`)
	speakerTurn     = regexp.MustCompile(`^([A-Z][A-Z .'\-]{1,40}):\s*(.*)$`)
	allCapsLine     = regexp.MustCompile(`^[A-Z][A-Z0-9 ,.'\-]{3,}$`)
)

// headingTemplate segments on lines matched by a heading pattern. The
// heading line becomes the segment label; everything until the next heading
// belongs to the segment.
type headingTemplate struct {
	name     string
	headings []*regexp.Regexp
}

func (t *headingTemplate) Name() string { return t.name }

func (t *headingTemplate) Segment(text string) []Segment {
	lines := strings.Split(text, "\n")

	var (
		segments []Segment
		label    string
		body     []string
	)
	flush := func() {
		trimmed := strings.TrimSpace(strings.Join(body, "\n"))
		if trimmed != "" {
			segments = append(segments, Segment{Label: label, Text: trimmed})
		}
		body = body[:0]
	}

	for _, line := range lines {
		if t.isHeading(line) {
			flush()
			label = strings.TrimSpace(line)
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(segments) == 0 {
		return paragraphSegments(text)
	}
	return segments
}

func (t *headingTemplate) isHeading(line string) bool {
	for _, re := range t.headings {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// transcriptTemplate groups consecutive lines of the same speaker into one
// segment labeled with the speaker name.
type transcriptTemplate struct{}

func (transcriptTemplate) Name() string { return TemplateTranscript }

func (transcriptTemplate) Segment(text string) []Segment {
	lines := strings.Split(text, "\n")

	var (
		segments []Segment
		speaker  string
		body     []string
	)
	flush := func() {
		trimmed := strings.TrimSpace(strings.Join(body, "\n"))
		if trimmed != "" {
			segments = append(segments, Segment{Label: speaker, Text: trimmed})
		}
		body = body[:0]
	}

	for _, line := range lines {
		if m := speakerTurn.FindStringSubmatch(line); m != nil {
			if m[1] != speaker {
				flush()
				speaker = m[1]
			}
			if m[2] != "" {
				body = append(body, m[2])
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(segments) == 0 {
		return paragraphSegments(text)
	}
	return segments
}

// genericTemplate is the paragraph fallback used for unrecognized document
// types and unknown template names.
type genericTemplate struct{}

func (genericTemplate) Name() string { return TemplateGeneric }

func (genericTemplate) Segment(text string) []Segment {
	return paragraphSegments(text)
}

// paragraphSegments splits on blank lines.
func paragraphSegments(text string) []Segment {
	var segments []Segment
	for _, para := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		segments = append(segments, Segment{Text: trimmed})
	}
	return segments
}

func builtinTemplates() map[string]Template {
	return map[string]Template{
		TemplateContract: &headingTemplate{
			name:     TemplateContract,
			headings: []*regexp.Regexp{contractHeading},
		},
		TemplateBrief: &headingTemplate{
			name:     TemplateBrief,
			headings: []*regexp.Regexp{briefHeading, allCapsLine},
		},
		TemplateTranscript: transcriptTemplate{},
		TemplateGeneric:    genericTemplate{},
	}
}
