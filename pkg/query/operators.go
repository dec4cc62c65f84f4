package query

// Comparison operators understood by the store, keyed by their bare
// query-string token.
const (
	OpGt  = "$gt"
	OpGte = "$gte"
	OpLt  = "$lt"
	OpLte = "$lte"
	OpIn  = "$in"
)

var operatorTokens = map[string]string{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// TranslateOperators returns a copy of filter where every map key equal to
// one of the bare tokens gt, gte, lt, lte, in is replaced by its
// operator-prefixed form. Other keys and all values are left untouched.
func TranslateOperators(filter map[string]any) map[string]any {
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		if op, ok := operatorTokens[k]; ok {
			k = op
		}
		if nested, ok := v.(map[string]any); ok {
			v = TranslateOperators(nested)
		}
		out[k] = v
	}
	return out
}
