package commands

import (
	"context"
	"errors"
	"log/slog"

	"circulation/internal/domain/rule"
	"circulation/internal/infra"
	"circulation/internal/pkg/errs"
	"circulation/internal/usecase/shared"
)

var (
	ErrRuleNotFound     = errs.New("rule not found")
	ErrInvalidRuleValue = errs.New("rule value does not parse under its declared type")
)

// RuleCommands administers the borrowing policy values.
type RuleCommands interface {
	// SeedDefaults creates any missing recognized rule with its default
	// value. Idempotent: re-running never overwrites an existing value.
	SeedDefaults(ctx context.Context) error
	UpdateRule(ctx context.Context, params UpdateRuleParams) (*rule.Rule, error)
}

type UpdateRuleParams struct {
	Key         string
	Name        string
	Description string
	Value       string
	ValueType   rule.ValueType
}

type ruleCommandsImpl struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewRuleCommands(uow shared.UnitOfWork, logger *slog.Logger) RuleCommands {
	return &ruleCommandsImpl{uow: uow, logger: logger}
}

func (c *ruleCommandsImpl) SeedDefaults(ctx context.Context) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, r := range rule.Defaults() {
			if err := tx.Rules().CreateIfAbsent(ctx, r); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Info("borrowing rule defaults seeded")
	return nil
}

// UpdateRule validates the new value under the declared type before
// committing; a failed validation leaves the stored rule untouched.
func (c *ruleCommandsImpl) UpdateRule(ctx context.Context, params UpdateRuleParams) (*rule.Rule, error) {
	var updated *rule.Rule

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Rules().FindByKey(ctx, params.Key)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRuleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := r.Update(params.Name, params.Description, params.Value, params.ValueType); err != nil {
			if errors.Is(err, rule.ErrValueInvalid) || errors.Is(err, rule.ErrInvalidValueType) {
				// Wrap the sentinel, not the cause: handlers and callers
				// match it with stdlib errors.Is.
				return errs.Wrap(ErrInvalidRuleValue, err.Error())
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := tx.Rules().Update(ctx, r); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("borrowing rule updated", "key", updated.Key(), "value", updated.Value())
	return updated, nil
}
