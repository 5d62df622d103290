package repository

import (
	"context"
	"time"

	"circulation/internal/domain/rule"
	"circulation/internal/infra"
)

type RuleRepository struct {
	db DB
}

func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `rule_key, rule_name, description, rule_value, value_type, updated_at`

func (r *RuleRepository) FindByKey(ctx context.Context, key string) (*rule.Rule, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM borrowing_rules WHERE rule_key = $1`, key)
	rl, err := scanRule(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("rule not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find rule by key", err)
	}
	return rl, nil
}

func (r *RuleRepository) Update(ctx context.Context, rl *rule.Rule) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE borrowing_rules
		 SET rule_name = $1, description = $2, rule_value = $3, value_type = $4, updated_at = now()
		 WHERE rule_key = $5`,
		rl.Name(), rl.Description(), rl.Value(), rl.Type().String(), rl.Key())
	if err != nil {
		return infra.WrapRepoErr("failed to update rule", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("rule not found", nil, infra.KindNotFound)
	}
	return nil
}

// CreateIfAbsent inserts the rule unless its key already exists. Existing
// values are never overwritten, so operator edits survive restarts.
func (r *RuleRepository) CreateIfAbsent(ctx context.Context, rl *rule.Rule) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO borrowing_rules (rule_key, rule_name, description, rule_value, value_type)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (rule_key) DO NOTHING`,
		rl.Key(), rl.Name(), rl.Description(), rl.Value(), rl.Type().String())
	if err != nil {
		return infra.WrapRepoErr("failed to seed rule", err)
	}
	return nil
}

func (r *RuleRepository) ListAll(ctx context.Context) ([]*rule.Rule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ruleColumns+` FROM borrowing_rules ORDER BY rule_key`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list rules", err)
	}
	defer rows.Close()

	var result []*rule.Rule
	for rows.Next() {
		rl, err := scanRule(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan rule", err)
		}
		result = append(result, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate rules", err)
	}
	return result, nil
}

func scanRule(row rowScanner) (*rule.Rule, error) {
	var (
		key, name, description, value, valueType string
		updatedAt                                time.Time
	)
	if err := row.Scan(&key, &name, &description, &value, &valueType, &updatedAt); err != nil {
		return nil, err
	}
	t, err := rule.ValueTypeFromCode(valueType)
	if err != nil {
		return nil, err
	}
	return rule.Reconstruct(key, name, description, value, t, updatedAt), nil
}
