package playerservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
)

// MatchAction is one of the three resolver outcomes.
type MatchAction string

const (
	MatchSelect MatchAction = "select"
	MatchCreate MatchAction = "create"
	MatchCancel MatchAction = "cancel"
)

// MatchDecision is the resolver's answer for one ambiguous row.
type MatchDecision struct {
	Action   MatchAction
	PlayerID int64
	// Remember persists the selection as a rule for future imports.
	Remember bool
}

// MatchResolver decides between ambiguous player candidates. The orchestrator
// is agnostic to whether the decision comes from a UI prompt, a remembered
// rule or a test stub.
type MatchResolver interface {
	Resolve(ctx context.Context, fio string, birthToken string, candidates []*playerdb.Player) (MatchDecision, error)
}

// NormalizeFIO folds a full name for matching: lowercase, ё→е, whitespace
// collapsed to single spaces.
func NormalizeFIO(fio string) string {
	folded := strings.ReplaceAll(strings.ToLower(fio), "ё", "е")
	return strings.Join(strings.Fields(folded), " ")
}

// FindCandidates filters the full player set to those whose normalized FIO
// matches, then by birth token when one is supplied: a full-date token must
// match exactly, a year token matches by prefix. No uniqueness is assumed;
// zero, one or many candidates are all normal outcomes.
func (s *Service) FindCandidates(ctx context.Context, db bun.IDB, fio, birthToken string) ([]*playerdb.Player, error) {
	normalized := NormalizeFIO(fio)
	if normalized == "" {
		return nil, nil
	}
	players, err := s.repo.List(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load players for matching: %w", err)
	}

	var candidates []*playerdb.Player
	for _, player := range players {
		if NormalizeFIO(player.FullName()) != normalized {
			continue
		}
		if birthToken != "" && !birthMatches(player.BirthDate, birthToken) {
			continue
		}
		candidates = append(candidates, player)
	}
	return candidates, nil
}

func birthMatches(birthDate *string, token string) bool {
	if birthDate == nil {
		return false
	}
	if len(token) > 4 {
		return *birthDate == token
	}
	return strings.HasPrefix(*birthDate, token)
}

// ResolvedPlayer carries the resolution outcome for one protocol row.
type ResolvedPlayer struct {
	Player *playerdb.Player
	// Created reports whether the player was created by this resolution.
	Created bool
}

// ResolveForImport applies the import resolution policy: zero candidates
// create a new player, a single candidate is used directly, multiple
// candidates consult the remembered rule and then the injected resolver.
// Without a resolver, ambiguity fails the import rather than guessing.
func (s *Service) ResolveForImport(ctx context.Context, db bun.IDB, fio parsers.FIO, birthDate, birthYear *string, coach *string) (ResolvedPlayer, error) {
	birthToken := ""
	if birthDate != nil {
		birthToken = *birthDate
	} else if birthYear != nil {
		birthToken = *birthYear
	}

	candidates, err := s.FindCandidates(ctx, db, fio.Full(), birthToken)
	if err != nil {
		return ResolvedPlayer{}, err
	}

	switch len(candidates) {
	case 0:
		return s.createFromRow(ctx, db, fio, birthDate, birthYear, coach)
	case 1:
		return ResolvedPlayer{Player: candidates[0]}, nil
	}

	ruleKey := NormalizeFIO(fio.Full())
	if playerID, ok, err := s.rules.Get(ruleKey, birthToken); err != nil {
		return ResolvedPlayer{}, err
	} else if ok {
		for _, candidate := range candidates {
			if candidate.ID == playerID {
				return ResolvedPlayer{Player: candidate}, nil
			}
		}
		// The remembered player is gone (merged or deleted); fall through
		// to the resolver.
	}

	if s.resolver == nil {
		return ResolvedPlayer{}, fmt.Errorf("%w: %s", ErrAmbiguousPlayer, fio.Full())
	}
	decision, err := s.resolver.Resolve(ctx, fio.Full(), birthToken, candidates)
	if err != nil {
		return ResolvedPlayer{}, fmt.Errorf("match resolver failed: %w", err)
	}

	switch decision.Action {
	case MatchCancel:
		return ResolvedPlayer{}, ErrImportCancelled
	case MatchCreate:
		return s.createFromRow(ctx, db, fio, birthDate, birthYear, coach)
	case MatchSelect:
		for _, candidate := range candidates {
			if candidate.ID == decision.PlayerID {
				if decision.Remember {
					rule := MatchRule{FIO: ruleKey, BirthToken: birthToken, PlayerID: candidate.ID}
					if err := s.rules.Save(rule); err != nil {
						return ResolvedPlayer{}, err
					}
				}
				return ResolvedPlayer{Player: candidate}, nil
			}
		}
		return ResolvedPlayer{}, fmt.Errorf("%w: %d", ErrUnknownCandidate, decision.PlayerID)
	}
	return ResolvedPlayer{}, fmt.Errorf("%w: %s", ErrAmbiguousPlayer, fio.Full())
}

func (s *Service) createFromRow(ctx context.Context, db bun.IDB, fio parsers.FIO, birthDate, birthYear *string, coach *string) (ResolvedPlayer, error) {
	birth := birthDate
	if birth == nil {
		birth = birthYear
	}
	player := &playerdb.Player{
		LastName:   fio.LastName,
		FirstName:  fio.FirstName,
		MiddleName: fio.MiddleName,
		BirthDate:  birth,
		Coach:      coach,
	}
	if err := s.repo.Create(ctx, db, player); err != nil {
		return ResolvedPlayer{}, err
	}
	return ResolvedPlayer{Player: player, Created: true}, nil
}
