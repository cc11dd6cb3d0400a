package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/expression"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// StatsService aggregates a module's records under the module's stats policy
type StatsService struct {
	modules *persistence.ModuleRepository
	records *persistence.RecordRepository
	engine  *expression.Engine
	log     *logrus.Entry
}

func NewStatsService(modules *persistence.ModuleRepository, records *persistence.RecordRepository, engine *expression.Engine) *StatsService {
	return &StatsService{
		modules: modules,
		records: records,
		engine:  engine,
		log:     logging.Component("stats_service"),
	}
}

// ValidatePolicy compiles both predicates and checks the amount keys.
// Blank members fall back to the defaults and are not checked.
func (s *StatsService) ValidatePolicy(p *models.StatsPolicy) error {
	if p.IsZero() {
		return nil
	}
	var verrs apperrors.ValidationErrors
	predicates := []struct{ field, expr string }{
		{"statsPolicy.activeWhen", p.ActiveWhen},
		{"statsPolicy.cancelledWhen", p.CancelledWhen},
	}
	for _, pr := range predicates {
		if pr.expr == "" {
			continue
		}
		if err := s.engine.Validate(pr.expr); err != nil {
			verrs.Add(pr.field, "invalid expression: "+err.Error())
		}
	}
	if p.MonthlyAmountKey != "" {
		checkFieldKey(&verrs, "statsPolicy.monthlyAmountKey", p.MonthlyAmountKey)
	}
	if p.YearlyAmountKey != "" {
		checkFieldKey(&verrs, "statsPolicy.yearlyAmountKey", p.YearlyAmountKey)
	}
	return verrs.ErrOrNil()
}

// ComputeStats counts the owner's records of a module and sums the amounts of
// active ones. estimatedAnnual is monthlyTotal*12 + yearlyTotal.
func (s *StatsService) ComputeStats(ctx context.Context, ownerID, moduleID string) (*models.StatsResult, error) {
	m, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListByOwner(ctx, nil, m.ID, ownerID)
	if err != nil {
		return nil, err
	}

	policy := m.StatsPolicy.Resolve()
	result := &models.StatsResult{TotalCount: len(records)}
	for _, rec := range records {
		env := map[string]interface{}(rec.Data)
		if s.matches(policy.CancelledWhen, env, rec.ID) {
			result.CancelledCount++
		}
		if !s.matches(policy.ActiveWhen, env, rec.ID) {
			continue
		}
		result.ActiveCount++
		result.MonthlyTotal += amount(rec.Data, policy.MonthlyAmountKey)
		result.YearlyTotal += amount(rec.Data, policy.YearlyAmountKey)
	}
	result.EstimatedAnnual = result.MonthlyTotal*12 + result.YearlyTotal
	return result, nil
}

// matches evaluates a predicate; an evaluation failure counts as no match
func (s *StatsService) matches(predicate string, env map[string]interface{}, recordID string) bool {
	ok, err := s.engine.EvaluateBool(predicate, env)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"record_id": recordID,
			"predicate": predicate,
		}).Warn("⚠️  Stats predicate failed")
		return false
	}
	return ok
}

// amount reads a number or numeric string; anything else counts as zero
func amount(data models.RecordData, key string) float64 {
	f, ok := utils.ToFloat(data[key])
	if !ok {
		return 0
	}
	return f
}
