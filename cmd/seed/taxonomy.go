package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"me-platform/internal/models"
)

// seedFile is the layout of a taxonomy seed document. The optional admin
// block creates the first administrator when the username is free.
type seedFile struct {
	models.Taxonomy `yaml:",inline"`
	Admin           *seedAdmin `yaml:"admin"`
}

type seedAdmin struct {
	Username string `yaml:"username"`
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email"`
}

// loadSeedFile reads and parses a taxonomy seed document
func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return parseSeedFile(data)
}

func parseSeedFile(data []byte) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i := range f.FocusAreas {
		if f.FocusAreas[i].StrategyIDs == nil {
			f.FocusAreas[i].StrategyIDs = []int64{}
		}
	}
	return &f, nil
}
