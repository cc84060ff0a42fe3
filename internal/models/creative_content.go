package models

import (
	"fmt"
	"time"
)

// CreativeKind tags the variant held by a CreativeContent.
type CreativeKind string

const (
	KindImage   CreativeKind = "image"
	KindQuote   CreativeKind = "quote"
	KindConcept CreativeKind = "concept"
	KindVideo   CreativeKind = "video"
)

type ImageContent struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required"`
	Source      string `json:"source" validate:"required"`
}

type QuoteContent struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required"`
}

type ConceptContent struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,required"`
}

type VideoContent struct {
	Title  string `json:"title" validate:"required"`
	URL    string `json:"url" validate:"required,url"`
	Source string `json:"source,omitempty"`
}

// CreativeContent is a piece of inspiration. Exactly one of the variant
// pointers is set and it always matches Kind; use the New* constructors.
type CreativeContent struct {
	ID        string       `json:"id"`
	Kind      CreativeKind `json:"type"`
	Category  string       `json:"category"`
	CreatedAt time.Time    `json:"createdAt"`
	IsSaved   bool         `json:"isSaved,omitempty"`

	Image   *ImageContent   `json:"image,omitempty"`
	Quote   *QuoteContent   `json:"quote,omitempty"`
	Concept *ConceptContent `json:"concept,omitempty"`
	Video   *VideoContent   `json:"video,omitempty"`
}

func NewImage(id, category string, createdAt time.Time, v ImageContent) (CreativeContent, error) {
	c := CreativeContent{ID: id, Kind: KindImage, Category: category, CreatedAt: createdAt, Image: &v}
	return c, c.Validate()
}

func NewQuote(id, category string, createdAt time.Time, v QuoteContent) (CreativeContent, error) {
	c := CreativeContent{ID: id, Kind: KindQuote, Category: category, CreatedAt: createdAt, Quote: &v}
	return c, c.Validate()
}

func NewConcept(id, category string, createdAt time.Time, v ConceptContent) (CreativeContent, error) {
	c := CreativeContent{ID: id, Kind: KindConcept, Category: category, CreatedAt: createdAt, Concept: &v}
	return c, c.Validate()
}

func NewVideo(id, category string, createdAt time.Time, v VideoContent) (CreativeContent, error) {
	c := CreativeContent{ID: id, Kind: KindVideo, Category: category, CreatedAt: createdAt, Video: &v}
	return c, c.Validate()
}

// Validate checks the shared fields and that the variant matches Kind.
func (c CreativeContent) Validate() error {
	if c.ID == "" || c.Category == "" {
		return fmt.Errorf("%w: creative content needs an id and a category", ErrInvalidContent)
	}

	set := 0
	for _, present := range []bool{c.Image != nil, c.Quote != nil, c.Concept != nil, c.Video != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %s must carry exactly one variant, got %d", ErrInvalidContent, c.ID, set)
	}

	var variant any
	switch c.Kind {
	case KindImage:
		variant = c.Image
	case KindQuote:
		variant = c.Quote
	case KindConcept:
		variant = c.Concept
	case KindVideo:
		variant = c.Video
	default:
		return fmt.Errorf("%w: unknown creative kind %q", ErrInvalidContent, c.Kind)
	}
	if variant == nil || isNilVariant(variant) {
		return fmt.Errorf("%w: %s is tagged %s but carries another variant", ErrInvalidContent, c.ID, c.Kind)
	}
	if err := validate.Struct(variant); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidContent, c.ID, err)
	}
	return nil
}

func isNilVariant(v any) bool {
	switch p := v.(type) {
	case *ImageContent:
		return p == nil
	case *QuoteContent:
		return p == nil
	case *ConceptContent:
		return p == nil
	case *VideoContent:
		return p == nil
	}
	return true
}

// Title is the display heading of any variant.
func (c CreativeContent) Title() string {
	switch c.Kind {
	case KindImage:
		return c.Image.Title
	case KindConcept:
		return c.Concept.Title
	case KindVideo:
		return c.Video.Title
	case KindQuote:
		return truncateWords(c.Quote.Content, 12)
	}
	return ""
}

// Summary is the short body text of any variant.
func (c CreativeContent) Summary() string {
	switch c.Kind {
	case KindImage:
		return c.Image.Description
	case KindConcept:
		return c.Concept.Description
	case KindVideo:
		return c.Video.Source
	case KindQuote:
		return fmt.Sprintf("%q by %s", c.Quote.Content, c.Quote.Author)
	}
	return ""
}
