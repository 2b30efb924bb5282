package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/taskboard-api/internal/query"
)

// filterDocument translates f to a MongoDB filter. Field names are used as
// stored; identity operands are converted to ObjectIDs.
func filterDocument(f query.Filter) (bson.D, error) {
	var clauses bson.A

	for _, c := range f.Conds {
		clause, err := condDocument(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	for _, sub := range f.And {
		doc, err := filterDocument(sub)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, doc)
	}
	if len(f.Or) > 0 {
		ors := make(bson.A, 0, len(f.Or))
		for _, sub := range f.Or {
			doc, err := filterDocument(sub)
			if err != nil {
				return nil, err
			}
			ors = append(ors, doc)
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: ors}})
	}

	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0].(bson.D), nil
	default:
		return bson.D{{Key: "$and", Value: clauses}}, nil
	}
}

func condDocument(c query.Cond) (bson.D, error) {
	var operand any
	switch c.Op {
	case query.OpIn, query.OpNin:
		values := make(bson.A, 0, len(c.Values))
		for _, v := range c.Values {
			converted, err := operandValue(c, v)
			if err != nil {
				return nil, err
			}
			values = append(values, converted)
		}
		operand = values
	default:
		converted, err := operandValue(c, c.Value)
		if err != nil {
			return nil, err
		}
		operand = converted
	}

	return bson.D{{Key: c.Field, Value: bson.D{{Key: string(c.Op), Value: operand}}}}, nil
}

func operandValue(c query.Cond, v any) (any, error) {
	if c.Kind != query.KindID {
		return v, nil
	}
	s, _ := v.(string)
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, &invalidIDError{field: c.Field, value: s}
	}
	return oid, nil
}

// sortDocument translates sort fields. Without explicit fields documents
// come back in natural order.
func sortDocument(fields []query.SortField) bson.D {
	doc := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		doc = append(doc, bson.E{Key: f.Field, Value: dir})
	}
	return doc
}

// findOptions applies the sort, skip and limit of q. A limit of 0 is
// unlimited in both query.Query and MongoDB.
func findOptions(q *query.Query) *options.FindOptions {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(sortDocument(q.Sort))
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}
