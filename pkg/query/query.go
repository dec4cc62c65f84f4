// Package query turns list-endpoint query strings into a store-neutral
// description of a filtered, projected, sorted and paginated fetch.
//
//	GET /bootcamps?housing=true&averageCost[lte]=10000&select=name,averageCost&sort=-averageCost&page=2&limit=5
//
// yields Filter {"housing": "true", "averageCost": {"$lte": "10000"}},
// Select [name averageCost], Sort [-averageCost], Page 2, Limit 5.
package query

import (
	"math"
	"net/url"
	"sort"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 30
	DefaultSort  = "-createdAt"

	MaxLimit = 1000
	// MaxPage keeps page*limit within 32 bits for every accepted limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// controlKeys never become part of the filter.
var controlKeys = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

// Document is one fetched record keyed by its public field names.
type Document map[string]any

type SortField struct {
	Field string
	Desc  bool
}

func (s SortField) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// Populate resolves a reference field into embedded documents.
// LocalField on the source is matched against ForeignField on Collection;
// Many embeds a list (reverse reference) instead of a single document.
type Populate struct {
	Path         string
	Collection   string
	LocalField   string
	ForeignField string
	Select       []string
	Many         bool
}

type Query struct {
	Filter   map[string]any
	Select   []string
	Sort     []SortField
	Page     int
	Limit    int
	Populate []Populate
}

// Skip is the zero-based index of the first record on the page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Parse builds a Query from raw query-string values.
func Parse(values url.Values) Query {
	q := Query{
		Filter: parseFilter(values),
		Select: splitFields(values.Get("select")),
		Sort:   parseSort(values.Get("sort")),
		Page:   min(parsePositive(values.Get("page"), DefaultPage), MaxPage),
		Limit:  min(parsePositive(values.Get("limit"), DefaultLimit), MaxLimit),
	}
	return q
}

func parseFilter(values url.Values) map[string]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		if _, skip := controlKeys[k]; skip {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filter := make(map[string]any, len(keys))
	for _, k := range keys {
		path := splitKey(k)
		if _, skip := controlKeys[path[0]]; skip {
			continue
		}
		assign(filter, path, flatten(values[k]))
	}

	translated := TranslateOperators(filter)
	expandIn(translated)
	return translated
}

// splitKey turns "tuition[gte]" into ["tuition", "gte"] and "a[]" into ["a", ""].
// Keys with unbalanced brackets are kept whole.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func flatten(vals []string) any {
	if len(vals) == 1 {
		return vals[0]
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

func assign(dst map[string]any, path []string, v any) {
	head := path[0]
	if len(path) == 1 {
		dst[head] = v
		return
	}
	// "a[]=x" appends rather than nesting under an empty key.
	if len(path) == 2 && path[1] == "" {
		dst[head] = toList(v)
		return
	}
	child, ok := dst[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		dst[head] = child
	}
	assign(child, path[1:], v)
}

func toList(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case string:
		return []string{x}
	}
	return nil
}

// expandIn accepts both "careers[in]=a,b" and repeated "careers[in]=a&careers[in]=b".
func expandIn(filter map[string]any) {
	for _, v := range filter {
		ops, ok := v.(map[string]any)
		if !ok {
			continue
		}
		raw, ok := ops["$in"]
		if !ok {
			continue
		}
		var list []string
		for _, item := range toList(raw) {
			list = append(list, splitFields(item)...)
		}
		ops["$in"] = list
	}
}

func splitFields(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseSort(s string) []SortField {
	fields := splitFields(s)
	if len(fields) == 0 {
		fields = []string{DefaultSort}
	}
	out := make([]SortField, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			out = append(out, SortField{Field: f[1:], Desc: true})
			continue
		}
		out = append(out, SortField{Field: strings.TrimPrefix(f, "+")})
	}
	return out
}

// parsePositive reads a leading integer the way a lenient form parser does
// ("2abc" is 2) and falls back to def for anything below 1.
func parsePositive(s string, def int) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > 1_000_000_000 {
			break
		}
	}
	if digits == 0 || neg || n < 1 {
		return def
	}
	return n
}
