package queries

import (
	"context"
)

type RuleQueries interface {
	GetByKey(ctx context.Context, key string) (*RuleView, error)
	ListAll(ctx context.Context) ([]*RuleView, error)
}

type RuleViewRepo interface {
	FindByKey(ctx context.Context, key string) (*RuleView, error)
	FindAll(ctx context.Context) ([]*RuleView, error)
}

type ruleQueriesImpl struct {
	repo RuleViewRepo
}

func NewRuleQueries(repo RuleViewRepo) RuleQueries {
	return &ruleQueriesImpl{repo: repo}
}

func (q *ruleQueriesImpl) GetByKey(ctx context.Context, key string) (*RuleView, error) {
	return q.repo.FindByKey(ctx, key)
}

func (q *ruleQueriesImpl) ListAll(ctx context.Context) ([]*RuleView, error) {
	return q.repo.FindAll(ctx)
}
