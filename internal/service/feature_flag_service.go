package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Nyctonit/feature-flags-service/internal/domain"
	"github.com/Nyctonit/feature-flags-service/internal/observability"
	"github.com/Nyctonit/feature-flags-service/internal/repository"
)

const maxFlagNameLen = 255

// CreateFlagInput carries a create request. Nil pointers take the defaults:
// enabled=true, rollout_percentage=100.
type CreateFlagInput struct {
	Name              string
	Enabled           *bool
	RolloutPercentage *float64
	Description       string
}

// UpdateFlagInput carries a partial update; only non-nil fields are applied.
// The flag name is not part of the input because it is immutable.
type UpdateFlagInput struct {
	Enabled           *bool
	RolloutPercentage *float64
	Description       *string
}

// FlagEvaluation is the ephemeral outcome of one evaluation. It is never
// persisted and is recomputed from current flag state on every request.
type FlagEvaluation struct {
	FlagName    string `json:"flag_name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

type FeatureFlagService interface {
	CreateFlag(ctx context.Context, in CreateFlagInput) (*domain.FeatureFlag, error)
	ListFlags(ctx context.Context) ([]domain.FeatureFlag, error)
	GetFlag(ctx context.Context, name string) (*domain.FeatureFlag, error)
	UpdateFlag(ctx context.Context, name string, in UpdateFlagInput) (*domain.FeatureFlag, error)
	DeleteFlag(ctx context.Context, name string) error
	EvaluateFlag(ctx context.Context, flagName, userID string) (*FlagEvaluation, error)
	EvaluateAll(ctx context.Context, userID string) ([]FlagEvaluation, error)
}

type featureFlagService struct {
	repo     repository.FeatureFlagRepository
	cache    EvaluationCacheStore
	cacheTTL time.Duration
}

func NewFeatureFlagService(repo repository.FeatureFlagRepository, cache EvaluationCacheStore, cacheTTL time.Duration) FeatureFlagService {
	if cache == nil {
		cache = NewNoopEvaluationCacheStore()
	}
	return &featureFlagService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *featureFlagService) CreateFlag(ctx context.Context, in CreateFlagInput) (*domain.FeatureFlag, error) {
	if err := validateFlagName(in.Name); err != nil {
		return nil, err
	}
	if in.RolloutPercentage != nil {
		if err := validateRollout(*in.RolloutPercentage); err != nil {
			return nil, err
		}
	}

	flag := &domain.FeatureFlag{
		Name:              in.Name,
		Enabled:           true,
		RolloutPercentage: 100,
		Description:       strings.TrimSpace(in.Description),
	}
	if in.Enabled != nil {
		flag.Enabled = *in.Enabled
	}
	if in.RolloutPercentage != nil {
		flag.RolloutPercentage = *in.RolloutPercentage
	}

	if err := s.repo.Create(ctx, flag); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flag, nil
}

func (s *featureFlagService) ListFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	return s.repo.List(ctx)
}

func (s *featureFlagService) GetFlag(ctx context.Context, name string) (*domain.FeatureFlag, error) {
	if err := validateLookupName(name); err != nil {
		return nil, err
	}
	return s.repo.FindByName(ctx, name)
}

func (s *featureFlagService) UpdateFlag(ctx context.Context, name string, in UpdateFlagInput) (*domain.FeatureFlag, error) {
	if err := validateLookupName(name); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Enabled != nil {
		fields["enabled"] = *in.Enabled
	}
	if in.RolloutPercentage != nil {
		if err := validateRollout(*in.RolloutPercentage); err != nil {
			return nil, err
		}
		fields["rollout_percentage"] = *in.RolloutPercentage
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}

	flag, err := s.repo.Update(ctx, name, fields)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flag, nil
}

func (s *featureFlagService) DeleteFlag(ctx context.Context, name string) error {
	if err := validateLookupName(name); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *featureFlagService) EvaluateFlag(ctx context.Context, flagName, userID string) (*FlagEvaluation, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateLookupName(flagName); err != nil {
		return nil, err
	}

	flag, err := s.repo.FindByName(ctx, flagName)
	if err != nil {
		return nil, err
	}
	enabled := EnabledForUser(flag, userID)
	if enabled {
		observability.RecordFlagEvaluation(ctx, "enabled")
	} else {
		observability.RecordFlagEvaluation(ctx, "disabled")
	}
	return &FlagEvaluation{FlagName: flag.Name, Enabled: enabled, Description: flag.Description}, nil
}

func (s *featureFlagService) EvaluateAll(ctx context.Context, userID string) ([]FlagEvaluation, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	cacheKey := "u:" + userID + "|all"
	if s.cacheTTL > 0 {
		if payload, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var cached []FlagEvaluation
			if err := json.Unmarshal(payload, &cached); err == nil {
				observability.RecordEvaluationCacheEvent(ctx, "hit")
				return cached, nil
			}
		}
		observability.RecordEvaluationCacheEvent(ctx, "miss")
	}

	flags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	evals := make([]FlagEvaluation, 0, len(flags))
	for i := range flags {
		enabled := EnabledForUser(&flags[i], userID)
		if enabled {
			observability.RecordFlagEvaluation(ctx, "enabled")
		} else {
			observability.RecordFlagEvaluation(ctx, "disabled")
		}
		evals = append(evals, FlagEvaluation{FlagName: flags[i].Name, Enabled: enabled, Description: flags[i].Description})
	}

	if s.cacheTTL > 0 {
		if payload, err := json.Marshal(evals); err == nil {
			_ = s.cache.Set(ctx, cacheKey, payload, s.cacheTTL)
		}
	}
	return evals, nil
}

// invalidate drops every cached evaluation after a successful mutation so
// cached outcomes never outlive the flag state they were computed from.
func (s *featureFlagService) invalidate(ctx context.Context) {
	_ = s.cache.InvalidateAll(ctx)
}

func validateFlagName(name string) error {
	if name == "" {
		return invalidField("name", "must not be empty")
	}
	if len(name) > maxFlagNameLen {
		return invalidField("name", "must be at most 255 bytes")
	}
	// names travel in URL paths and in the bucketing key; ':' is the key
	// separator and user ids are unconstrained, so a ':' in a flag name
	// would let two distinct user/flag pairs share one canonical key
	if strings.ContainsAny(name, " \t\n/:") {
		return invalidField("name", "must not contain whitespace, '/' or ':'")
	}
	return nil
}

// validateLookupName guards lookups by name. Format rules are enforced at
// creation, so a malformed name on a read or delete is just a name that
// cannot exist and falls through to not-found.
func validateLookupName(name string) error {
	if name == "" {
		return invalidField("name", "must not be empty")
	}
	return nil
}

func validateRollout(p float64) error {
	if p < 0 || p > 100 {
		return invalidField("rollout_percentage", "must be between 0 and 100")
	}
	return nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalidField("user_id", "must not be empty")
	}
	return nil
}
