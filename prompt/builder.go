package prompt

import (
	"fmt"
	"strings"

	"serenity_back/catalog"
)

const (
	defaultStyle    = "mindfulness"
	defaultDuration = 10
	defaultLanguage = "zh"
)

// Params carries the user-facing knobs for one prompt. Zero values for Style
// and Duration defer to the catalog entry when the topic resolves.
type Params struct {
	Topic         string
	Style         string
	Duration      int
	Language      string
	Customization Customization
}

// Customization is caller-supplied prompt augmentation passed through
// untouched into the constraint and special-requirement sections.
type Customization struct {
	AdditionalConstraints []string
	SpecialRequirements   string
}

// Builder assembles LLM prompts from the topic catalog and fixed language
// templates. It is stateless and safe for concurrent use.
type Builder struct {
	catalog *catalog.Catalog
}

func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{catalog: cat}
}

// Build produces the standard multi-section prompt. Unknown topics are treated
// as literal display strings; the builder never fails.
func (b *Builder) Build(p Params) string {
	lang, tpl := b.template(p.Language)
	entry := b.lookup(p.Topic)
	topicName := b.topicName(p.Topic, entry, lang)
	style := b.styleName(p.Style, entry, lang)
	duration := effectiveDuration(p.Duration, entry)

	var out strings.Builder
	out.WriteString(tpl.roleFraming)
	out.WriteString("\n\n")
	out.WriteString(fmt.Sprintf(tpl.instruction, topicName, style, duration))
	if entry != nil {
		if desc := strings.TrimSpace(entry.Description[lang]); desc != "" {
			out.WriteString(" ")
			out.WriteString(fmt.Sprintf(tpl.withDesc, desc))
		}
	}
	out.WriteString("\n\n")

	out.WriteString(tpl.constraintsHdr)
	out.WriteString("\n")
	for _, constraint := range tpl.constraints {
		out.WriteString("- ")
		out.WriteString(constraint)
		out.WriteString("\n")
	}
	if entry != nil {
		if audience := entry.TargetAudience[lang]; len(audience) > 0 {
			out.WriteString("- ")
			out.WriteString(fmt.Sprintf(tpl.audienceLine, strings.Join(audience, tpl.listSeparator)))
			out.WriteString("\n")
		}
		if benefits := entry.Benefits[lang]; len(benefits) > 0 {
			out.WriteString("- ")
			out.WriteString(fmt.Sprintf(tpl.benefitsLine, strings.Join(benefits, tpl.listSeparator)))
			out.WriteString("\n")
		}
	}
	for _, constraint := range p.Customization.AdditionalConstraints {
		trimmed := strings.TrimSpace(constraint)
		if trimmed == "" {
			continue
		}
		out.WriteString("- ")
		out.WriteString(trimmed)
		out.WriteString("\n")
	}
	out.WriteString("\n")

	out.WriteString(tpl.formatHdr)
	out.WriteString("\n")
	for _, item := range tpl.formatItems {
		out.WriteString("- ")
		out.WriteString(item)
		out.WriteString("\n")
	}
	out.WriteString("\n")

	out.WriteString(tpl.specialHdr)
	out.WriteString("\n")
	out.WriteString(b.specialRequirements(entry, topicName, lang, tpl, p.Customization))
	out.WriteString("\n")

	return out.String()
}

// BuildQuick produces the terse single-paragraph variant used for short
// requested durations.
func (b *Builder) BuildQuick(p Params) string {
	lang, tpl := b.template(p.Language)
	entry := b.lookup(p.Topic)
	topicName := b.topicName(p.Topic, entry, lang)
	style := b.styleName(p.Style, entry, lang)
	duration := effectiveDuration(p.Duration, entry)

	var out strings.Builder
	out.WriteString(fmt.Sprintf(tpl.quick, topicName, style, duration))
	if special := strings.TrimSpace(p.Customization.SpecialRequirements); special != "" {
		out.WriteString(" ")
		out.WriteString(special)
	}
	return out.String()
}

func (b *Builder) lookup(topic string) *catalog.Descriptor {
	if b == nil || b.catalog == nil {
		return nil
	}
	return b.catalog.Lookup(topic)
}

func (b *Builder) template(language string) (string, languageTemplate) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if _, ok := languageTemplates[lang]; !ok {
		lang = defaultLanguage
	}
	return lang, languageTemplates[lang]
}

func (b *Builder) topicName(raw string, entry *catalog.Descriptor, lang string) string {
	if entry != nil {
		return entry.LocalizedName(lang)
	}
	return strings.TrimSpace(raw)
}

func (b *Builder) styleName(style string, entry *catalog.Descriptor, lang string) string {
	id := strings.ToLower(strings.TrimSpace(style))
	if id == "" && entry != nil && len(entry.RecommendedStyles) > 0 {
		id = entry.RecommendedStyles[0]
	}
	if id == "" {
		id = defaultStyle
	}
	if names, ok := defaultStyleNames[lang]; ok {
		if name, ok := names[id]; ok {
			return name
		}
	}
	return id
}

func effectiveDuration(requested int, entry *catalog.Descriptor) int {
	if requested > 0 {
		return requested
	}
	if entry != nil && entry.DefaultDuration > 0 {
		return entry.DefaultDuration
	}
	return defaultDuration
}

// specialRequirements picks, in order: explicit customization, catalog
// techniques/best-time/progression, the per-topic language fallback hints,
// and finally the no-special-requirements sentinel.
func (b *Builder) specialRequirements(entry *catalog.Descriptor, topicName, lang string, tpl languageTemplate, custom Customization) string {
	lines := make([]string, 0, 4)

	if special := strings.TrimSpace(custom.SpecialRequirements); special != "" {
		lines = append(lines, special)
	}

	if entry != nil {
		if len(entry.Techniques) > 0 {
			lines = append(lines, fmt.Sprintf(tpl.techniquesLine, strings.Join(entry.Techniques, tpl.listSeparator)))
		}
		if len(entry.BestTime) > 0 {
			lines = append(lines, fmt.Sprintf(tpl.bestTimeLine, strings.Join(entry.BestTime, tpl.listSeparator)))
		}
		if len(entry.Progression) > 0 {
			lines = append(lines, fmt.Sprintf(tpl.progressionFmt, strings.Join(entry.Progression, " → ")))
		}
	}

	if len(lines) == 0 {
		if hints, ok := topicFallbackHints[lang]; ok {
			if hint, ok := hints[topicName]; ok {
				lines = append(lines, hint)
			}
		}
	}

	if len(lines) == 0 {
		return tpl.noSpecial
	}
	return strings.Join(lines, "\n")
}
