package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryResearch   Category = "research"
	CategoryCoding     Category = "coding"
	CategoryAdmin      Category = "admin"
	CategoryNetworking Category = "networking"
)

// Categories lists every category in a fixed order. Embedding one-hot
// positions and grouping output depend on this order.
var Categories = []Category{CategoryResearch, CategoryCoding, CategoryAdmin, CategoryNetworking}

// ValidCategories is the canonical set of accepted category strings.
var ValidCategories = map[Category]bool{
	CategoryResearch:   true,
	CategoryCoding:     true,
	CategoryAdmin:      true,
	CategoryNetworking: true,
}

// ParseCategory normalizes s and checks it against the category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !ValidCategories[c] {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidTask, s)
	}
	return c, nil
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return -1
}

type Artifact string

const (
	ArtifactArticle Artifact = "article"
	ArtifactNotes   Artifact = "notes"
	ArtifactCode    Artifact = "code"
)

var ValidArtifacts = map[Artifact]bool{
	ArtifactArticle: true,
	ArtifactNotes:   true,
	ArtifactCode:    true,
}

type DoneOnTime string

const (
	DoneOnTimeYes DoneOnTime = "yes"
	DoneOnTimeNo  DoneOnTime = "no"
)

// Priority bounds. Higher is more important.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// RiskLevel classifies how overcommitted a week's plan is.
type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)
