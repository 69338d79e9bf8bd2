package models

import "time"

// Organisation is a ministry, department or agency (OMA)
type Organisation struct {
	ID   int64  `json:"id" db:"id" yaml:"id"`
	Name string `json:"name" db:"name" yaml:"name"`
	Code string `json:"code" db:"code" yaml:"code"`
}

// Pillar is the top level of the development classification
type Pillar struct {
	ID   int64  `json:"id" db:"id" yaml:"id"`
	Name string `json:"name" db:"name" yaml:"name"`
}

// Theme groups focus areas under a pillar
type Theme struct {
	ID       int64  `json:"id" db:"id" yaml:"id"`
	PillarID int64  `json:"pillar_id" db:"pillar_id" yaml:"pillar_id"`
	Name     string `json:"name" db:"name" yaml:"name"`
}

// FocusArea belongs to one organisation and references the strategies it pursues
type FocusArea struct {
	ID             int64   `json:"id" db:"id" yaml:"id"`
	ThemeID        int64   `json:"theme_id" db:"theme_id" yaml:"theme_id"`
	OrganisationID int64   `json:"organisation_id" db:"organisation_id" yaml:"organisation_id"`
	Name           string  `json:"name" db:"name" yaml:"name"`
	StrategyIDs    []int64 `json:"strategy_ids" db:"strategy_ids" yaml:"strategy_ids"`
}

// Programme is delivered under a focus area
type Programme struct {
	ID          int64  `json:"id" db:"id" yaml:"id"`
	FocusAreaID int64  `json:"focus_area_id" db:"focus_area_id" yaml:"focus_area_id"`
	Name        string `json:"name" db:"name" yaml:"name"`
}

// Strategy is the most specific taxonomy level
type Strategy struct {
	ID          int64  `json:"id" db:"id" yaml:"id"`
	ProgrammeID int64  `json:"programme_id" db:"programme_id" yaml:"programme_id"`
	Name        string `json:"name" db:"name" yaml:"name"`
}

// Taxonomy is a full or filtered snapshot of the classification tables
type Taxonomy struct {
	Organisations []Organisation `json:"organisations" yaml:"organisations"`
	Pillars       []Pillar       `json:"pillars" yaml:"pillars"`
	Themes        []Theme        `json:"themes" yaml:"themes"`
	FocusAreas    []FocusArea    `json:"focus_areas" yaml:"focus_areas"`
	Programmes    []Programme    `json:"programmes" yaml:"programmes"`
	Strategies    []Strategy     `json:"strategies" yaml:"strategies"`
}

// Project is an organisation-scoped record without a review workflow
type Project struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	OrganisationID int64      `json:"organisation_id" db:"organisation_id"`
	FocusAreaID    int64      `json:"focus_area_id" db:"focus_area_id"`
	ProgrammeID    int64      `json:"programme_id" db:"programme_id"`
	StrategyIDs    []int64    `json:"strategies" db:"strategy_ids"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Budget         float64    `json:"budget" db:"budget"`
	StartDate      *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
