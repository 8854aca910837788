package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fantasy-ai/backend/internal/model"
)

const (
	defaultName        = "Assistant"
	defaultDescription = "A helpful AI assistant."
)

// Models names the completion model used for each family of characters.
type Models struct {
	Default   string
	Academic  string
	Creative  string
	Fitness   string
	Nutrition string
	Coaching  string
}

func (m Models) all() []string {
	return []string{m.Default, m.Academic, m.Creative, m.Fitness, m.Nutrition, m.Coaching}
}

// Catalog is the static set of default characters derived from the built-in categories.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	models     Models
	characters map[string]model.Character
}

func New(models Models) *Catalog {
	c := &Catalog{
		models:     models,
		characters: make(map[string]model.Character, len(categories)),
	}
	for _, cat := range categories {
		c.characters[strconv.FormatInt(cat.ID, 10)] = c.fromCategory(cat)
	}
	return c
}

// Categories returns the built-in categories in display order.
func (c *Catalog) Categories() []model.Category {
	out := make([]model.Category, len(categories))
	for i, cat := range categories {
		cat.SubTasks = slices.Clone(cat.SubTasks)
		out[i] = cat
	}
	return out
}

// Character returns a copy of the default character with the given id, or nil.
func (c *Catalog) Character(id string) *model.Character {
	ch, ok := c.characters[strings.TrimSpace(id)]
	if !ok {
		return nil
	}
	return cloneCharacter(ch)
}

// CharactersByCategory returns the default characters whose category title matches, case-insensitively.
func (c *Catalog) CharactersByCategory(category string) []*model.Character {
	var out []*model.Character
	for _, cat := range categories {
		if strings.EqualFold(cat.Title, strings.TrimSpace(category)) {
			out = append(out, cloneCharacter(c.characters[strconv.FormatInt(cat.ID, 10)]))
		}
	}
	return out
}

// TypeForCategory maps a category title to the stored character type.
func (c *Catalog) TypeForCategory(category string) (string, bool) {
	t, ok := categoryTypes[strings.ToLower(strings.TrimSpace(category))]
	return t, ok
}

// ModelForType picks the completion model for a character type.
func (c *Catalog) ModelForType(characterType string) string {
	switch characterType {
	case "wellness_guide":
		return c.models.Fitness
	case "career_helper", "study_partner":
		return c.models.Academic
	case "creative_buddy":
		return c.models.Creative
	case "social_coach", "life_coach":
		return c.models.Coaching
	default:
		return c.models.Default
	}
}

// Normalize fills the fields a stored or caller-supplied character may be missing
// so that every character handed to a session has a prompt, a model and a greeting.
func (c *Catalog) Normalize(ch model.Character) model.Character {
	ch.ID = strings.TrimSpace(ch.ID)
	if ch.Name == "" {
		ch.Name = defaultName
	}
	if ch.Description == "" {
		ch.Description = defaultDescription
	}
	if ch.Tags == nil {
		ch.Tags = []string{}
	}
	if ch.ExampleQuestions == nil {
		ch.ExampleQuestions = []string{}
	}
	if ch.SuggestedQuestions == nil {
		ch.SuggestedQuestions = []string{}
	}
	if ch.SubTasks == nil {
		ch.SubTasks = []string{}
	}
	if ch.Type == "" && ch.Category != "" {
		ch.Type, _ = c.TypeForCategory(ch.Category)
	}
	if ch.Model == "" || !slices.Contains(c.models.all(), ch.Model) {
		ch.Model = c.ModelForType(ch.Type)
	}
	if ch.SystemPrompt == "" {
		topic := ch.Category
		if topic == "" {
			topic = ch.Name
		}
		ch.SystemPrompt = c.categoryPrompt(topic, ch.Name)
		if ch.SystemPrompt == "" {
			ch.SystemPrompt = DefaultPrompt(ch.Name, ch.Description)
		}
	}
	if ch.Greeting == "" {
		ch.Greeting = fmt.Sprintf("Hello! I'm %s.", ch.Name)
	}
	if ch.OpeningMessage == "" {
		ch.OpeningMessage = ch.Greeting
	}
	return ch
}

// DefaultPrompt is the system prompt used when a character carries none of its own.
func DefaultPrompt(name, description string) string {
	return strings.TrimSpace(fmt.Sprintf("You are %s. %s", name, description))
}

// categoryPrompt returns a specialised prompt when topic is one of the built-in categories.
func (c *Catalog) categoryPrompt(topic, name string) string {
	for _, cat := range categories {
		if !strings.EqualFold(cat.Title, topic) {
			continue
		}
		return fmt.Sprintf(
			"You are %s, a friendly AI assistant specialising in %s (%s). "+
				"Keep answers practical and concise, and ask a clarifying question when a request is ambiguous.",
			name, cat.Title, strings.ToLower(cat.Description),
		)
	}
	return ""
}

func (c *Catalog) fromCategory(cat model.Category) model.Character {
	title := strings.ToLower(cat.Title)

	m := c.models.Default
	switch {
	case cat.Group == "Professional" || cat.Group == "Learning":
		m = c.models.Academic
	case title == "creativity":
		m = c.models.Creative
	case cat.Group == "Health":
		m = c.models.Fitness
		if title == "nutrition" {
			m = c.models.Nutrition
		}
	case cat.Group == "Personal" || cat.Group == "Lifestyle":
		m = c.models.Coaching
	}

	subTasks := slices.Clone(cat.SubTasks)
	if subTasks == nil {
		subTasks = []string{}
	}
	characterType, _ := c.TypeForCategory(cat.Title)

	return model.Character{
		ID:                 strconv.FormatInt(cat.ID, 10),
		Name:               cat.Title,
		Description:        cat.Description,
		Greeting:           fmt.Sprintf("Hello! I'm your %s assistant.", cat.Title),
		OpeningMessage:     fmt.Sprintf("Hello! How can I help you with %s?", cat.Title),
		SystemPrompt:       c.categoryPrompt(cat.Title, cat.Title),
		Model:              m,
		ExampleQuestions:   window(subTasks, 0, 2),
		SuggestedQuestions: window(subTasks, 2, 4),
		SubTasks:           subTasks,
		Category:           cat.Title,
		Tags:               []string{cat.Group},
		Type:               characterType,
		Source:             model.SourceCatalog,
	}
}

// window returns a copy of s[from:to] clamped to the slice bounds.
func window(s []string, from, to int) []string {
	if from > len(s) {
		from = len(s)
	}
	if to > len(s) {
		to = len(s)
	}
	return slices.Clone(s[from:to:to])
}

func cloneCharacter(ch model.Character) *model.Character {
	ch.ExampleQuestions = slices.Clone(ch.ExampleQuestions)
	ch.SuggestedQuestions = slices.Clone(ch.SuggestedQuestions)
	ch.SubTasks = slices.Clone(ch.SubTasks)
	ch.Tags = slices.Clone(ch.Tags)
	return &ch
}
