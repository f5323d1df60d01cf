package notion

import (
	"strings"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

// DefaultPageEmoji is used for pages without an emoji icon.
const DefaultPageEmoji = "📄"

type plainText struct {
	PlainText string `json:"plain_text"`
}

type fileRef struct {
	URL string `json:"url"`
}

type apiPage struct {
	ID   string `json:"id"`
	Icon *struct {
		Type     string   `json:"type"`
		Emoji    string   `json:"emoji"`
		External *fileRef `json:"external"`
		File     *fileRef `json:"file"`
	} `json:"icon"`
	Properties map[string]struct {
		Title []plainText `json:"title"`
	} `json:"properties"`
	Title []plainText `json:"title"`
}

// destination maps an API page onto the domain type.
func (p apiPage) destination() domain.Destination {
	d := domain.Destination{ID: p.ID, Emoji: DefaultPageEmoji, Name: p.title()}
	if p.Icon == nil {
		return d
	}
	switch p.Icon.Type {
	case "emoji":
		if p.Icon.Emoji != "" {
			d.Emoji = p.Icon.Emoji
		}
	case "external":
		if p.Icon.External != nil {
			d.IconURL = p.Icon.External.URL
		}
	case "file":
		if p.Icon.File != nil {
			d.IconURL = p.Icon.File.URL
		}
	}
	return d
}

func (p apiPage) title() string {
	parts := p.Title
	if prop, ok := p.Properties["title"]; ok && len(prop.Title) > 0 {
		parts = prop.Title
	} else if prop, ok := p.Properties["Name"]; ok && len(prop.Title) > 0 {
		parts = prop.Title
	}

	var b strings.Builder
	for _, t := range parts {
		b.WriteString(t.PlainText)
	}
	if b.Len() == 0 {
		return "Untitled"
	}
	return b.String()
}
