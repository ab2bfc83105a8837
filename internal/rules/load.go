package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/muse/internal/condition"
	"github.com/alexanderramin/muse/internal/domain"
)

const (
	rulesFile       = "rules.yaml"
	modesFile       = "modes.yaml"
	methodologyFile = "methodology.md"
)

// modeList accepts either a YAML sequence of mode IDs or the scalar
// "all", which normalizes to the empty list (= applies everywhere).
type modeList []string

func (m *modeList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "all" || node.Value == "" {
			*m = nil
			return nil
		}
		return fmt.Errorf("appliesToModes: expected a list or \"all\", got %q", node.Value)
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	if len(list) == 1 && list[0] == "all" {
		*m = nil
		return nil
	}
	*m = list
	return nil
}

type ruleDoc struct {
	Rules []struct {
		Name                 string            `yaml:"name"`
		Description          string            `yaml:"description"`
		Conditions           map[string]string `yaml:"conditions"`
		AppliesToModes       modeList          `yaml:"appliesToModes"`
		Priority             string            `yaml:"priority"`
		RequiresConversation bool              `yaml:"requiresConversation"`
		DelaySeconds         int               `yaml:"delaySeconds"`
		PromptGuidance       string            `yaml:"promptGuidance"`
		OpeningMessage       string            `yaml:"openingMessage"`
	} `yaml:"rules"`
}

type modeDoc struct {
	Modes []struct {
		ID       string   `yaml:"id"`
		Label    string   `yaml:"label"`
		Triggers []string `yaml:"triggers"`
		Guidance string   `yaml:"guidance"`
	} `yaml:"modes"`
}

// Load reads and validates the catalog from dir. A missing directory
// or any validation failure returns the built-in default catalog along
// with the error, so the caller can surface the defect while the
// system keeps a usable rule set.
func Load(dir string) (Catalog, error) {
	cat := Catalog{Methodology: DefaultCatalog().Methodology}

	if data, err := os.ReadFile(filepath.Join(dir, methodologyFile)); err == nil {
		cat.Methodology = string(data)
	}

	modes, err := loadModes(filepath.Join(dir, modesFile))
	if err != nil {
		return DefaultCatalog(), fmt.Errorf("loading %s: %w", modesFile, err)
	}
	cat.Modes = modes

	loaded, err := loadRules(filepath.Join(dir, rulesFile))
	if err != nil {
		return DefaultCatalog(), fmt.Errorf("loading %s: %w", rulesFile, err)
	}
	cat.Rules = loaded

	return cat, nil
}

func loadModes(path string) ([]domain.WritingMode, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog().Modes, nil
	}
	if err != nil {
		return nil, err
	}
	var doc modeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	modes := make([]domain.WritingMode, 0, len(doc.Modes))
	seen := make(map[string]bool)
	for _, m := range doc.Modes {
		if m.ID == "" {
			return nil, fmt.Errorf("mode with empty id")
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate mode id %q", m.ID)
		}
		seen[m.ID] = true
		modes = append(modes, domain.WritingMode{
			ID:                     m.ID,
			Label:                  m.Label,
			ApplicableTriggerNames: m.Triggers,
			GuidanceText:           m.Guidance,
		})
	}
	return modes, nil
}

func loadRules(path string) ([]domain.TriggerRule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog().Rules, nil
	}
	if err != nil {
		return nil, err
	}
	var doc ruleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.TriggerRule, 0, len(doc.Rules))
	seen := make(map[string]bool)
	for i, r := range doc.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: empty name", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true

		priority := domain.Priority(r.Priority)
		if r.Priority == "" {
			priority = domain.PriorityMedium
		} else if !domain.ValidPriorities[r.Priority] {
			return nil, fmt.Errorf("rule %q: invalid priority %q", r.Name, r.Priority)
		}
		if r.DelaySeconds < 0 {
			return nil, fmt.Errorf("rule %q: negative delaySeconds", r.Name)
		}

		conditions := make(map[domain.MetricKey]string, len(r.Conditions))
		for key, expression := range r.Conditions {
			mk := domain.MetricKey(key)
			if !domain.ValidMetricKeys[mk] {
				return nil, fmt.Errorf("rule %q: unknown metric key %q", r.Name, key)
			}
			if _, err := condition.Parse(expression); err != nil {
				return nil, fmt.Errorf("rule %q: condition %q: %w", r.Name, key, err)
			}
			conditions[mk] = expression
		}

		out = append(out, domain.TriggerRule{
			Name:                 r.Name,
			Description:          r.Description,
			Conditions:           conditions,
			AppliesToModes:       r.AppliesToModes,
			Priority:             priority,
			RequiresConversation: r.RequiresConversation,
			DelaySeconds:         r.DelaySeconds,
			PromptGuidance:       r.PromptGuidance,
			OpeningMessage:       r.OpeningMessage,
		})
	}
	return out, nil
}
