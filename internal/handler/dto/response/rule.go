package response

import (
	"time"

	"circulation/internal/domain/rule"
	"circulation/internal/usecase/queries"
)

type RuleResponse struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Value       string    `json:"value"`
	ValueType   string    `json:"valueType"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromRule(r *rule.Rule) *RuleResponse {
	return &RuleResponse{
		Key:         r.Key(),
		Name:        r.Name(),
		Description: r.Description(),
		Value:       r.Value(),
		ValueType:   r.Type().String(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func FromRuleView(rm *queries.RuleView) *RuleResponse {
	return &RuleResponse{
		Key:         rm.Key,
		Name:        rm.Name,
		Description: rm.Description,
		Value:       rm.Value,
		ValueType:   rm.ValueType,
		UpdatedAt:   rm.UpdatedAt,
	}
}
