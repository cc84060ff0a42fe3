// Package creative provides the curated inspiration feed.
package creative

import (
	"context"
	"errors"
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

const imageBase = "https://images.unsplash.com/"

// builder constructs one entry at the given time.
type builder func(createdAt time.Time) (models.CreativeContent, error)

func image(id, category string, v models.ImageContent) builder {
	v.ImageURL = imageBase + v.ImageURL
	return func(t time.Time) (models.CreativeContent, error) { return models.NewImage(id, category, t, v) }
}

func quote(id, category, content, author string) builder {
	return func(t time.Time) (models.CreativeContent, error) {
		return models.NewQuote(id, category, t, models.QuoteContent{Content: content, Author: author})
	}
}

func concept(id, category string, v models.ConceptContent) builder {
	return func(t time.Time) (models.CreativeContent, error) { return models.NewConcept(id, category, t, v) }
}

func video(id, category string, v models.VideoContent) builder {
	return func(t time.Time) (models.CreativeContent, error) { return models.NewVideo(id, category, t, v) }
}

var curated = []builder{
	image("creative-minimalist-ai", "UI/UX", models.ImageContent{
		Title:       "Minimalist AI Interface Design Principles",
		Description: "Clean, focused interfaces that reduce cognitive load while maintaining powerful functionality.",
		ImageURL:    "photo-1526374965328-7f61d4dc18c5",
		Source:      "Design Systems Weekly",
	}),
	quote("creative-alan-kay", "Innovation", "The best way to predict the future is to invent it.", "Alan Kay"),
	image("creative-cyberpunk-architecture", "Design", models.ImageContent{
		Title:       "Cyberpunk Architecture Meets Modern Tech",
		Description: "Exploring how futuristic design concepts influence contemporary digital interfaces.",
		ImageURL:    "photo-1500673922987-e212871fec22",
		Source:      "Architectural Digest",
	}),
	concept("creative-neural-interface", "Concept", models.ConceptContent{
		Title:       "Neural Interface Prototyping",
		Description: "Concepts for direct brain-computer interfaces that could transform how we interact with AI systems.",
		Tags:        []string{"AI", "Hardware", "Future Tech"},
	}),
	image("creative-organic-dataviz", "Data Viz", models.ImageContent{
		Title:       "Organic Data Visualization",
		Description: "Nature-inspired approaches to representing complex data structures and AI decision trees.",
		ImageURL:    "photo-1470071459604-3b5ec3a7fe05",
		Source:      "Data Art Collective",
	}),
	quote("creative-mullenweg", "Philosophy", "Technology is best when it brings people together.", "Matt Mullenweg"),
	image("creative-fluid-interfaces", "Interaction", models.ImageContent{
		Title:       "Digital Ocean: Fluid AI Interfaces",
		Description: "How AI interfaces can feel more natural and intuitive through fluid, water-like interactions.",
		ImageURL:    "photo-1500375592092-40eb2168fd21",
		Source:      "Interaction Design Foundation",
	}),
	concept("creative-sustainable-ai", "Sustainability", models.ConceptContent{
		Title:       "Sustainable AI Computing",
		Description: "Approaches to reducing the environmental impact of AI training and inference through green technology.",
		Tags:        []string{"Green Tech", "AI Ethics", "Environment"},
	}),
	quote("creative-greene", "Innovation", "The future belongs to those who learn more skills and combine them in creative ways.", "Robert Greene"),
	video("creative-generative-motion", "Motion", models.VideoContent{
		Title:  "Generative Motion Design Showcase",
		URL:    "https://vimeo.com/channels/staffpicks",
		Source: "Vimeo Staff Picks",
	}),
}

// Provider serves the curated inspiration list.
type Provider struct {
	builders []builder
	now      func() time.Time
}

func New(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{builders: curated, now: now}
}

// Fetch builds every entry. Entries that fail validation are left out and
// reported in the returned error alongside the valid ones.
func (p *Provider) Fetch(ctx context.Context) ([]models.CreativeContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := p.now()
	items := make([]models.CreativeContent, 0, len(p.builders))
	var errs []error
	for _, build := range p.builders {
		c, err := build(now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, c)
	}
	return items, errors.Join(errs...)
}
