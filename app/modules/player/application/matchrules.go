package playerservice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MatchRule remembers a previously chosen player for an ambiguous
// (normalized FIO, birth token) pair, short-circuiting repeated prompts.
type MatchRule struct {
	FIO        string `json:"fio"`
	BirthToken string `json:"birth_token"`
	PlayerID   int64  `json:"player_id"`
}

// RuleStore persists remembered player-match rules.
type RuleStore interface {
	Get(fio, birthToken string) (int64, bool, error)
	Save(rule MatchRule) error
	List() ([]MatchRule, error)
}

// FileRuleStore keeps the rules in one JSON document, rewritten whole on
// every mutation.
type FileRuleStore struct {
	path string
}

// NewFileRuleStore creates a rule store over the given JSON document path.
func NewFileRuleStore(path string) *FileRuleStore {
	return &FileRuleStore{path: path}
}

func (s *FileRuleStore) List() ([]MatchRule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read match rules: %w", err)
	}
	var rules []MatchRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode match rules: %w", err)
	}
	return rules, nil
}

func (s *FileRuleStore) Get(fio, birthToken string) (int64, bool, error) {
	rules, err := s.List()
	if err != nil {
		return 0, false, err
	}
	for _, rule := range rules {
		if rule.FIO == fio && rule.BirthToken == birthToken {
			return rule.PlayerID, true, nil
		}
	}
	return 0, false, nil
}

// Save inserts or replaces the rule for the same (FIO, birth token) key.
func (s *FileRuleStore) Save(rule MatchRule) error {
	rules, err := s.List()
	if err != nil {
		return err
	}
	replaced := false
	for i := range rules {
		if rules[i].FIO == rule.FIO && rules[i].BirthToken == rule.BirthToken {
			rules[i] = rule
			replaced = true
			break
		}
	}
	if !replaced {
		rules = append(rules, rule)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode match rules: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write match rules: %w", err)
	}
	return nil
}
