package query

// Query is a listing request compiled against a collection schema.
type Query struct {
	Filter     Filter
	Sort       []SortField
	Projection Projection
	Skip       int64
	// Limit of 0 means unrestricted.
	Limit int64
}

// Compile validates p against schema.
func Compile(p Params, schema Schema) (*Query, error) {
	filter, err := CompileFilter(p.Where, schema)
	if err != nil {
		return nil, err
	}
	sortFields, err := CompileSort(p.Sort, schema)
	if err != nil {
		return nil, err
	}
	projection, err := CompileProjection(p.Select, schema)
	if err != nil {
		return nil, err
	}

	return &Query{
		Filter:     filter,
		Sort:       sortFields,
		Projection: projection,
		Skip:       p.Skip,
		Limit:      p.Limit,
	}, nil
}
