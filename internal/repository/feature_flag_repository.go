package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Nyctonit/feature-flags-service/internal/domain"
	"github.com/Nyctonit/feature-flags-service/internal/observability"
)

var (
	ErrFeatureFlagNotFound = errors.New("feature flag not found")
	ErrFeatureFlagExists   = errors.New("feature flag already exists")
)

// FeatureFlagRepository is the persistence boundary for flag definitions.
// Uniqueness of Name is enforced by the store, so concurrent creates of the
// same name resolve to exactly one winner.
type FeatureFlagRepository interface {
	List(ctx context.Context) ([]domain.FeatureFlag, error)
	FindByName(ctx context.Context, name string) (*domain.FeatureFlag, error)
	Create(ctx context.Context, flag *domain.FeatureFlag) error
	// Update applies the supplied column set to the named flag in a single
	// statement; callers never observe a partially applied update.
	Update(ctx context.Context, name string, fields map[string]any) (*domain.FeatureFlag, error)
	Delete(ctx context.Context, name string) error
}

type GormFeatureFlagRepository struct{ db *gorm.DB }

func NewFeatureFlagRepository(db *gorm.DB) FeatureFlagRepository {
	return &GormFeatureFlagRepository{db: db}
}

func (r *GormFeatureFlagRepository) List(ctx context.Context) ([]domain.FeatureFlag, error) {
	var flags []domain.FeatureFlag
	if err := r.db.WithContext(ctx).Order("name asc").Find(&flags).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "feature_flag", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "feature_flag", "list", "success")
	return flags, nil
}

func (r *GormFeatureFlagRepository) FindByName(ctx context.Context, name string) (*domain.FeatureFlag, error) {
	var flag domain.FeatureFlag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "feature_flag", "find_by_name", "not_found")
			return nil, ErrFeatureFlagNotFound
		}
		observability.RecordRepositoryOperation(ctx, "feature_flag", "find_by_name", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "feature_flag", "find_by_name", "success")
	return &flag, nil
}

func (r *GormFeatureFlagRepository) Create(ctx context.Context, flag *domain.FeatureFlag) error {
	if err := r.db.WithContext(ctx).Create(flag).Error; err != nil {
		if isUniqueViolation(err) {
			observability.RecordRepositoryOperation(ctx, "feature_flag", "create", "conflict")
			return ErrFeatureFlagExists
		}
		observability.RecordRepositoryOperation(ctx, "feature_flag", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "feature_flag", "create", "success")
	return nil
}

func (r *GormFeatureFlagRepository) Update(ctx context.Context, name string, fields map[string]any) (*domain.FeatureFlag, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	// updated_at advances on every successful update, including an empty
	// field set, so it is written explicitly rather than left to callbacks.
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&domain.FeatureFlag{}).Where("name = ?", name).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "feature_flag", "update", "error")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "feature_flag", "update", "not_found")
		return nil, ErrFeatureFlagNotFound
	}
	observability.RecordRepositoryOperation(ctx, "feature_flag", "update", "success")

	var flag domain.FeatureFlag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&flag).Error; err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *GormFeatureFlagRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.FeatureFlag{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "feature_flag", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "feature_flag", "delete", "not_found")
		return ErrFeatureFlagNotFound
	}
	observability.RecordRepositoryOperation(ctx, "feature_flag", "delete", "success")
	return nil
}

// isUniqueViolation recognizes duplicate-key failures across the drivers this
// service runs against (pgx reports SQLSTATE 23505, sqlite a UNIQUE
// constraint message) plus gorm's own translated sentinel.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(strings.ToLower(msg), "duplicate key")
}
