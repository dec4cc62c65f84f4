package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// Finder renders a query.Query into SQL against one collection.
type Finder struct {
	db  *sql.DB
	col *Collection
	sb  sq.StatementBuilderType
}

func NewFinder(db *sql.DB, col *Collection) *Finder {
	return &Finder{
		db:  db,
		col: col,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (f *Finder) Count(ctx context.Context, filter map[string]any) (int64, error) {
	cond, err := f.where(filter)
	if err != nil {
		return 0, err
	}
	b := f.sb.Select("COUNT(*)").From(f.col.Table)
	if len(cond) > 0 {
		b = b.Where(cond)
	}
	stmt, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := f.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (f *Finder) Find(ctx context.Context, q query.Query) ([]query.Document, error) {
	docs, hidden, err := f.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	strip(docs, hidden)
	return docs, nil
}

func (f *Finder) FindByID(ctx context.Context, id string, populate ...query.Populate) (query.Document, error) {
	docs, err := f.Find(ctx, query.Query{
		Filter:   map[string]any{"id": id},
		Page:     1,
		Limit:    1,
		Populate: populate,
	})
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, f.notFound(id)
		}
		return nil, err
	}
	if len(docs) == 0 {
		return nil, f.notFound(id)
	}
	return docs[0], nil
}

func (f *Finder) notFound(id string) error {
	return apperror.NotFound("%s not found with id of %s", f.col.Resource, id)
}

// fetch runs the query and resolves populates. Fields that had to be read
// only to join on are reported in hidden so callers can drop them.
func (f *Finder) fetch(ctx context.Context, q query.Query, need ...string) ([]query.Document, []string, error) {
	fields, err := f.col.project(q.Select)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range q.Populate {
		need = append(need, p.LocalField)
	}
	var hidden []string
	for _, name := range need {
		if hasField(fields, name) {
			continue
		}
		fl, ok := f.col.field(name)
		if !ok {
			return nil, nil, fmt.Errorf("%s has no field %q", f.col.Name, name)
		}
		fields = append(fields, fl)
		hidden = append(hidden, name)
	}

	cols := make([]string, len(fields))
	for i, fl := range fields {
		cols[i] = fl.selectExpr()
	}
	b := f.sb.Select(cols...).From(f.col.Table)

	cond, err := f.where(q.Filter)
	if err != nil {
		return nil, nil, err
	}
	if len(cond) > 0 {
		b = b.Where(cond)
	}

	for _, s := range q.Sort {
		expr, _, err := f.col.target(s.Field)
		if err != nil {
			return nil, nil, err
		}
		if s.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		b = b.OrderBy(expr)
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	if skip := q.Skip(); skip > 0 {
		b = b.Offset(uint64(skip))
	}

	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, nil, err
	}
	rows, err := f.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, nil, err
	}
	docs, err := scanDocuments(rows, fields)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range q.Populate {
		if err := f.populate(ctx, docs, p); err != nil {
			return nil, nil, err
		}
		hidden = without(hidden, p.Path)
	}
	return docs, hidden, nil
}

func (f *Finder) populate(ctx context.Context, docs []query.Document, p query.Populate) error {
	col, ok := registry[p.Collection]
	if !ok {
		return fmt.Errorf("populate %s: unknown collection %q", p.Path, p.Collection)
	}

	seen := map[string]struct{}{}
	var keys []string
	for _, d := range docs {
		k, ok := d[p.LocalField].(string)
		if !ok {
			continue
		}
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	grouped := map[string][]query.Document{}
	if len(keys) > 0 {
		sub := NewFinder(f.db, col)
		related, hidden, err := sub.fetch(ctx, query.Query{
			Filter: map[string]any{p.ForeignField: map[string]any{query.OpIn: keys}},
			Select: p.Select,
			Page:   1,
		}, p.ForeignField)
		if err != nil {
			return err
		}
		for _, r := range related {
			k, _ := r[p.ForeignField].(string)
			grouped[k] = append(grouped[k], r)
		}
		strip(related, hidden)
	}

	for _, d := range docs {
		k, _ := d[p.LocalField].(string)
		matches := grouped[k]
		switch {
		case p.Many && matches == nil:
			d[p.Path] = []query.Document{}
		case p.Many:
			d[p.Path] = matches
		case len(matches) > 0:
			d[p.Path] = matches[0]
		default:
			d[p.Path] = nil
		}
	}
	return nil
}

// where translates a filter produced by query.Parse into SQL conditions.
// Keys are visited in sorted order so the rendered statement is stable.
func (f *Finder) where(filter map[string]any) (sq.And, error) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cond sq.And
	for _, key := range keys {
		expr, fl, err := f.col.target(key)
		if err != nil {
			return nil, err
		}

		switch v := filter[key].(type) {
		case map[string]any:
			ops := make([]string, 0, len(v))
			for op := range v {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			for _, op := range ops {
				c, err := compare(expr, fl, op, v[op])
				if err != nil {
					return nil, err
				}
				cond = append(cond, c)
			}
		default:
			vals, err := parseAll(fl, v)
			if err != nil {
				return nil, err
			}
			if len(vals) == 1 {
				cond = append(cond, sq.Eq{expr: vals[0]})
			} else {
				cond = append(cond, sq.Eq{expr: vals})
			}
		}
	}
	return cond, nil
}

func compare(expr string, fl Field, op string, raw any) (sq.Sqlizer, error) {
	if op == query.OpIn {
		vals, err := parseAll(fl, raw)
		if err != nil {
			return nil, err
		}
		return sq.Eq{expr: vals}, nil
	}

	s, ok := raw.(string)
	if !ok {
		return nil, apperror.Validation("Operator %s on %s takes a single value", op, fl.Name)
	}
	val, err := fl.parse(s)
	if err != nil {
		return nil, err
	}
	switch op {
	case query.OpGt:
		return sq.Gt{expr: val}, nil
	case query.OpGte:
		return sq.GtOrEq{expr: val}, nil
	case query.OpLt:
		return sq.Lt{expr: val}, nil
	case query.OpLte:
		return sq.LtOrEq{expr: val}, nil
	}
	return nil, apperror.Validation("Unsupported operator %q on %s", op, fl.Name)
}

func parseAll(fl Field, raw any) ([]any, error) {
	var strs []string
	switch v := raw.(type) {
	case string:
		strs = []string{v}
	case []string:
		strs = v
	default:
		return nil, apperror.Validation("Invalid value for %s", fl.Name)
	}
	out := make([]any, 0, len(strs))
	for _, s := range strs {
		val, err := fl.parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// project resolves a select list. A list made only of "-field" entries
// excludes those fields; otherwise it is an inclusion list and id is always
// returned.
func (c *Collection) project(sel []string) ([]Field, error) {
	if len(sel) == 0 {
		return append([]Field(nil), c.Fields...), nil
	}

	exclude := true
	for _, s := range sel {
		if !strings.HasPrefix(s, "-") {
			exclude = false
			break
		}
	}

	wanted := map[string]bool{}
	for _, s := range sel {
		name := strings.TrimPrefix(s, "-")
		if _, ok := c.field(name); !ok {
			return nil, apperror.Validation("Unknown field %q in select", name)
		}
		wanted[name] = true
	}

	var out []Field
	for _, fl := range c.Fields {
		if exclude != wanted[fl.Name] || (!exclude && fl.Name == "id") {
			out = append(out, fl)
		}
	}
	return out, nil
}

func scanDocuments(rows *sql.Rows, fields []Field) ([]query.Document, error) {
	defer rows.Close()

	var docs []query.Document
	for rows.Next() {
		dest := make([]any, len(fields))
		for i, fl := range fields {
			dest[i] = fl.scanDest()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		doc := make(query.Document, len(fields))
		for i, fl := range fields {
			doc[fl.Name] = fl.scanned(dest[i])
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func hasField(fields []Field, name string) bool {
	for _, fl := range fields {
		if fl.Name == name {
			return true
		}
	}
	return false
}

func without(list []string, name string) []string {
	out := list[:0]
	for _, s := range list {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func strip(docs []query.Document, fields []string) {
	for _, d := range docs {
		for _, name := range fields {
			delete(d, name)
		}
	}
}

var _ repository.Finder = (*Finder)(nil)
