package catalog

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Descriptor describes one meditation topic. Instances are immutable after the
// catalog is built; localized fields are keyed by language code ("zh", "en").
type Descriptor struct {
	ID                string              `json:"id"`
	Name              map[string]string   `json:"name"`
	Description       map[string]string   `json:"description,omitempty"`
	RecommendedStyles []string            `json:"recommended_styles,omitempty"`
	DefaultDuration   int                 `json:"default_duration,omitempty"`
	TargetAudience    map[string][]string `json:"target_audience,omitempty"`
	Benefits          map[string][]string `json:"benefits,omitempty"`
	Keywords          []string            `json:"keywords,omitempty"`
	Techniques        []string            `json:"techniques,omitempty"`
	BestTime          []string            `json:"best_time,omitempty"`
	Progression       []string            `json:"progression,omitempty"`
}

// LocalizedName returns the topic name for the given language, falling back to
// any available localization and finally to the topic id.
func (d *Descriptor) LocalizedName(language string) string {
	if d == nil {
		return ""
	}
	if name := strings.TrimSpace(d.Name[language]); name != "" {
		return name
	}
	for _, lang := range []string{"zh", "en"} {
		if name := strings.TrimSpace(d.Name[lang]); name != "" {
			return name
		}
	}
	return d.ID
}

// Catalog is a read-only collection of topic descriptors shared by reference
// across the process.
type Catalog struct {
	topics []Descriptor
	byID   map[string]int
}

// New builds a catalog from the given descriptors, dropping entries without an
// id and de-duplicating by id (first occurrence wins).
func New(topics []Descriptor) *Catalog {
	out := make([]Descriptor, 0, len(topics))
	byID := make(map[string]int, len(topics))
	for _, topic := range topics {
		id := strings.ToLower(strings.TrimSpace(topic.ID))
		if id == "" {
			continue
		}
		if _, exists := byID[id]; exists {
			continue
		}
		topic.ID = id
		byID[id] = len(out)
		out = append(out, topic)
	}
	return &Catalog{topics: out, byID: byID}
}

// Default returns the catalog loaded from TOPIC_CATALOG / TOPIC_CATALOG_FILE
// overrides when present, otherwise the built-in topic set.
func Default() *Catalog {
	if topics := loadCatalogFromEnv(); len(topics) > 0 {
		return New(topics)
	}
	return New(defaultTopicCatalog)
}

// Lookup resolves a topic reference by id, localized name or keyword
// membership, in that order. Returns nil when nothing matches.
func (c *Catalog) Lookup(topic string) *Descriptor {
	if c == nil {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(topic))
	if needle == "" {
		return nil
	}

	if idx, ok := c.byID[needle]; ok {
		return &c.topics[idx]
	}

	for i := range c.topics {
		for _, name := range c.topics[i].Name {
			if strings.EqualFold(strings.TrimSpace(name), needle) {
				return &c.topics[i]
			}
		}
	}

	for i := range c.topics {
		for _, keyword := range c.topics[i].Keywords {
			if strings.EqualFold(strings.TrimSpace(keyword), needle) {
				return &c.topics[i]
			}
		}
	}

	return nil
}

// Search scores topics by keyword overlap and returns matches ordered by
// score, ties broken by catalog order. An empty keyword list returns nil.
func (c *Catalog) Search(keywords []string, language string) []Descriptor {
	if c == nil || len(keywords) == 0 {
		return nil
	}

	needles := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		trimmed := strings.ToLower(strings.TrimSpace(keyword))
		if trimmed != "" {
			needles = append(needles, trimmed)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	type scored struct {
		index int
		score int
	}
	matches := make([]scored, 0, len(c.topics))

	for i := range c.topics {
		topic := &c.topics[i]
		haystack := make([]string, 0, len(topic.Keywords)+4)
		haystack = append(haystack, topic.ID)
		for _, name := range topic.Name {
			haystack = append(haystack, strings.ToLower(name))
		}
		for _, keyword := range topic.Keywords {
			haystack = append(haystack, strings.ToLower(keyword))
		}
		if desc := strings.TrimSpace(topic.Description[language]); desc != "" {
			haystack = append(haystack, strings.ToLower(desc))
		}

		score := 0
		for _, needle := range needles {
			for _, candidate := range haystack {
				if candidate == needle {
					score += 2
					break
				}
				if strings.Contains(candidate, needle) {
					score++
					break
				}
			}
		}
		if score > 0 {
			matches = append(matches, scored{index: i, score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].score > matches[b].score
	})

	out := make([]Descriptor, 0, len(matches))
	for _, match := range matches {
		out = append(out, c.topics[match.index])
	}
	return out
}

// SupportedTopics lists the ids and localized names accepted for the given
// language; used by strict topic validation.
func (c *Catalog) SupportedTopics(language string) []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.topics)*2)
	for i := range c.topics {
		out = append(out, c.topics[i].ID)
		if name := strings.TrimSpace(c.topics[i].Name[language]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Topics returns a copy of every descriptor in catalog order.
func (c *Catalog) Topics() []Descriptor {
	if c == nil {
		return nil
	}
	out := make([]Descriptor, len(c.topics))
	copy(out, c.topics)
	return out
}

// Styles returns the distinct recommended styles across the catalog.
func (c *Catalog) Styles() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for i := range c.topics {
		for _, style := range c.topics[i].RecommendedStyles {
			trimmed := strings.ToLower(strings.TrimSpace(style))
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}
			out = append(out, trimmed)
		}
	}
	return out
}

// loadCatalogFromEnv reads a catalog override from TOPIC_CATALOG (inline JSON)
// or TOPIC_CATALOG_FILE (path to a JSON document).
func loadCatalogFromEnv() []Descriptor {
	rawInline := strings.TrimSpace(os.Getenv("TOPIC_CATALOG"))
	if rawInline != "" {
		if topics := parseCatalogJSON(rawInline); len(topics) > 0 {
			return topics
		}
		log.Printf("catalog: failed to parse TOPIC_CATALOG override")
	}

	rawPath := strings.TrimSpace(os.Getenv("TOPIC_CATALOG_FILE"))
	if rawPath != "" {
		data, err := os.ReadFile(filepath.Clean(rawPath))
		if err != nil {
			log.Printf("catalog: read TOPIC_CATALOG_FILE failed: %v", err)
		} else if topics := parseCatalogJSON(string(data)); len(topics) > 0 {
			return topics
		} else {
			log.Printf("catalog: failed to parse catalog file %s", rawPath)
		}
	}

	return nil
}

func parseCatalogJSON(raw string) []Descriptor {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	var wrapped struct {
		Topics []Descriptor `json:"topics"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil && len(wrapped.Topics) > 0 {
		return wrapped.Topics
	}

	var list []Descriptor
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil && len(list) > 0 {
		return list
	}

	return nil
}
