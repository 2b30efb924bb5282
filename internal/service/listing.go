package service

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/query"
)

// ListResult is the outcome of a listing request. When Counted is true the
// request asked for a count and Items is nil.
type ListResult struct {
	Count   int64
	Counted bool
	Items   []any
}

// Data returns the value to send to the client: the count, or the items.
func (r *ListResult) Data() any {
	if r.Counted {
		return r.Count
	}
	return r.Items
}

type countFunc func(ctx context.Context, f query.Filter) (int64, error)

// list compiles p against schema and runs it. Counting ignores sort,
// projection, skip and limit.
func list[T any](
	ctx context.Context,
	p query.Params,
	schema query.Schema,
	count countFunc,
	find func(ctx context.Context, q *query.Query) ([]T, error),
) (*ListResult, error) {
	q, err := query.Compile(p, schema)
	if err != nil {
		return nil, err
	}

	if p.Count {
		n, err := count(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		return &ListResult{Count: n, Counted: true}, nil
	}

	docs, err := find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(docs))
	for _, doc := range docs {
		item, err := q.Projection.Apply(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ListResult{Items: items}, nil
}

// project applies a select object to a single document.
func project(doc any, sel map[string]any, schema query.Schema) (any, error) {
	projection, err := query.CompileProjection(sel, schema)
	if err != nil {
		return nil, err
	}
	return projection.Apply(doc)
}
