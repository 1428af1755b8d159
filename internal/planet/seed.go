package planet

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// seedPlanet uses pointers so an absent or null key is told apart from a zero value
type seedPlanet struct {
	Name        *string `yaml:"name"`
	Description *string `yaml:"description"`
	Moon        *int    `yaml:"moon"`
}

type seedFile struct {
	Planets []seedPlanet `yaml:"planets"`
}

func (p seedPlanet) input() (Input, error) {
	switch {
	case p.Name == nil:
		return Input{}, errors.New("name is required")
	case p.Description == nil:
		return Input{}, errors.New("description is required")
	case p.Moon == nil:
		return Input{}, errors.New("moon is required")
	}

	return Input{Name: *p.Name, Description: *p.Description, Moon: *p.Moon}, nil
}

// LoadSeed decodes a YAML document with a top-level planets list
func LoadSeed(r io.Reader) ([]Input, error) {
	var file seedFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []Input{}, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	inputs := make([]Input, 0, len(file.Planets))
	for i, p := range file.Planets {
		input, err := p.input()
		if err != nil {
			return nil, fmt.Errorf("seed planet %d: %w", i, err)
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}

// Seed creates every input in order and returns how many were created
func (s *Service) Seed(ctx context.Context, inputs []Input) (int, error) {
	logger := s.logger.With("component", "planet_service", "operation", "seed")

	for i, input := range inputs {
		if _, err := s.Create(ctx, input); err != nil {
			return i, fmt.Errorf("failed to seed planet %q: %w", input.Name, err)
		}
	}

	logger.Info("Seed completed", "count", len(inputs))
	return len(inputs), nil
}
