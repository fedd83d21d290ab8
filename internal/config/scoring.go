package config

import (
	"fmt"
	"os"

	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/profile"
	"gopkg.in/yaml.v3"
)

// Scoring holds the tables the scoring engine is parameterized with.
type Scoring struct {
	Domains profile.DomainMapping  `yaml:"domains"`
	Survey  circadian.SurveyTables `yaml:"survey"`
	Peak    profile.PeakPolicy     `yaml:"peak"`
}

// DefaultScoring returns the built-in tables.
func DefaultScoring() Scoring {
	return Scoring{
		Domains: profile.DefaultDomainMapping(),
		Survey:  circadian.DefaultSurveyTables(),
		Peak:    profile.DefaultPeakPolicy(),
	}
}

// LoadScoring reads overrides from a YAML file on top of the defaults. Map
// entries present in the file replace the default entry with the same key;
// everything else keeps its default. An empty path returns the defaults.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Scoring{}, fmt.Errorf("read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Scoring{}, fmt.Errorf("parse scoring config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scoring{}, err
	}
	return s, nil
}

// Validate rejects tables the engine cannot score with.
func (s Scoring) Validate() error {
	for d, sources := range s.Domains {
		if !domain.IsCognitiveDomain(d) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownDomain, d)
		}
		for _, src := range sources {
			if src.Activity == "" || src.Metric == "" {
				return fmt.Errorf("%w: domain %s has a source without activity or metric", domain.ErrInvalidInput, d)
			}
			if src.Weight <= 0 {
				return fmt.Errorf("%w: domain %s source %s.%s has non-positive weight", domain.ErrInvalidInput, d, src.Activity, src.Metric)
			}
			if src.Range != nil && src.Range.Max <= src.Range.Min {
				return fmt.Errorf("%w: domain %s source %s.%s has an empty range", domain.ErrInvalidInput, d, src.Activity, src.Metric)
			}
		}
	}
	if s.Survey.SchoolDuration <= 0 || s.Survey.HomeworkDuration <= 0 {
		return fmt.Errorf("%w: survey window durations must be positive", domain.ErrInvalidInput)
	}
	if s.Survey.SleepNeed <= 0 || s.Survey.SleepNeed >= 24 {
		return fmt.Errorf("%w: sleep need must be within (0, 24) hours", domain.ErrInvalidInput)
	}
	if len(s.Peak.ScoreFields) == 0 {
		return fmt.Errorf("%w: peak policy needs at least one score field", domain.ErrInvalidInput)
	}
	if s.Peak.FatigueMin > s.Peak.FatigueMax {
		return fmt.Errorf("%w: peak fatigue bounds are inverted", domain.ErrInvalidInput)
	}
	return nil
}
