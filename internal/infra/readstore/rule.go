package readstore

import (
	"context"

	"circulation/internal/infra"
	"circulation/internal/usecase/queries"
)

type RuleReadStore struct {
	db DB
}

func NewRuleReadStore(db DB) *RuleReadStore {
	return &RuleReadStore{db: db}
}

const ruleViewColumns = `rule_key, rule_name, description, rule_value, value_type, updated_at`

func (r *RuleReadStore) FindByKey(ctx context.Context, key string) (*queries.RuleView, error) {
	var v queries.RuleView
	err := r.db.QueryRow(ctx,
		`SELECT `+ruleViewColumns+` FROM borrowing_rules WHERE rule_key = $1`, key).
		Scan(&v.Key, &v.Name, &v.Description, &v.Value, &v.ValueType, &v.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("rule not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find rule by key", err)
	}
	return &v, nil
}

func (r *RuleReadStore) FindAll(ctx context.Context) ([]*queries.RuleView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ruleViewColumns+` FROM borrowing_rules ORDER BY rule_key`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list rules", err)
	}
	defer rows.Close()

	var result []*queries.RuleView
	for rows.Next() {
		var v queries.RuleView
		if err := rows.Scan(&v.Key, &v.Name, &v.Description, &v.Value, &v.ValueType, &v.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan rule view", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate rule views", err)
	}
	return result, nil
}
