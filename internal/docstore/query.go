package docstore

import "fmt"

// Op is a comparison operator in a filter condition.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Cond compares the value at Field (a dotted path) with Value.
type Cond struct {
	Field string
	Op    Op
	Value any
}

func (c Cond) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

func Eq(field string, v any) Cond  { return Cond{Field: field, Op: OpEq, Value: v} }
func Gt(field string, v any) Cond  { return Cond{Field: field, Op: OpGt, Value: v} }
func Gte(field string, v any) Cond { return Cond{Field: field, Op: OpGte, Value: v} }
func Lt(field string, v any) Cond  { return Cond{Field: field, Op: OpLt, Value: v} }
func Lte(field string, v any) Cond { return Cond{Field: field, Op: OpLte, Value: v} }

// In matches when the field equals any of vs.
func In[T any](field string, vs ...T) Cond {
	list := make([]any, len(vs))
	for i, v := range vs {
		list[i] = v
	}
	return Cond{Field: field, Op: OpIn, Value: list}
}

// Filter is a conjunction of conditions. An empty filter matches every document.
type Filter []Cond

// Where builds a Filter from conditions.
func Where(conds ...Cond) Filter { return Filter(conds) }

// Update describes field mutations applied by UpdateOne.
type Update struct {
	Set      map[string]any
	AddToSet map[string]any
}

// Set returns an Update setting a single field.
func Set(field string, v any) Update {
	return Update{Set: map[string]any{field: v}}
}

// AddToSet returns an Update appending v to the array at field unless present.
func AddToSet(field string, v any) Update {
	return Update{AddToSet: map[string]any{field: v}}
}

func (u Update) empty() bool {
	return len(u.Set) == 0 && len(u.AddToSet) == 0
}

// SortKey orders results by a field; Desc reverses the order.
type SortKey struct {
	Field string
	Desc  bool
}

func Asc(field string) SortKey  { return SortKey{Field: field} }
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

// FindOptions controls ordering and truncation of Find results.
// Without a sort key results come back in id order. Limit <= 0 means no limit.
type FindOptions struct {
	Sort  []SortKey
	Limit int
}
