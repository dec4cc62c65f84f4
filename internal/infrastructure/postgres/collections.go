package postgres

import (
	"database/sql"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// FieldKind decides how a filter value is parsed and how a column is scanned.
type FieldKind int

const (
	KindText FieldKind = iota
	KindUUID
	KindInt
	KindFloat
	KindBool
	KindTime
	KindJSON
)

// Field maps a public document field onto a table column.
type Field struct {
	Name   string
	Column string
	Kind   FieldKind
}

// Collection is the queryable schema of one table.
type Collection struct {
	Name     string
	Resource string // used in not-found messages
	Table    string
	Fields   []Field
}

const (
	CollectionUsers     = "users"
	CollectionBootcamps = "bootcamps"
	CollectionCourses   = "courses"
	CollectionReviews   = "reviews"
)

var (
	Users = &Collection{
		Name:     CollectionUsers,
		Resource: "User",
		Table:    "users",
		Fields: []Field{
			{"id", "id", KindUUID},
			{"name", "name", KindText},
			{"email", "email", KindText},
			{"role", "role", KindText},
			{"createdAt", "created_at", KindTime},
		},
	}

	Bootcamps = &Collection{
		Name:     CollectionBootcamps,
		Resource: "Bootcamp",
		Table:    "bootcamps",
		Fields: []Field{
			{"id", "id", KindUUID},
			{"name", "name", KindText},
			{"slug", "slug", KindText},
			{"description", "description", KindText},
			{"website", "website", KindText},
			{"phone", "phone", KindText},
			{"email", "email", KindText},
			{"address", "address", KindText},
			{"location", "location", KindJSON},
			{"housing", "housing", KindBool},
			{"jobAssistance", "job_assistance", KindBool},
			{"jobGuarantee", "job_guarantee", KindBool},
			{"acceptGi", "accept_gi", KindBool},
			{"photo", "photo", KindText},
			{"averageCost", "average_cost", KindFloat},
			{"user", "user_id", KindUUID},
			{"createdAt", "created_at", KindTime},
		},
	}

	Courses = &Collection{
		Name:     CollectionCourses,
		Resource: "Course",
		Table:    "courses",
		Fields: []Field{
			{"id", "id", KindUUID},
			{"title", "title", KindText},
			{"description", "description", KindText},
			{"weeks", "weeks", KindText},
			{"tuition", "tuition", KindFloat},
			{"minimumSkill", "minimum_skill", KindText},
			{"scholarshipAvailable", "scholarship_available", KindBool},
			{"bootcamp", "bootcamp_id", KindUUID},
			{"user", "user_id", KindUUID},
			{"createdAt", "created_at", KindTime},
		},
	}

	Reviews = &Collection{
		Name:     CollectionReviews,
		Resource: "Review",
		Table:    "reviews",
		Fields: []Field{
			{"id", "id", KindUUID},
			{"title", "title", KindText},
			{"text", "text", KindText},
			{"rating", "rating", KindInt},
			{"bootcamp", "bootcamp_id", KindUUID},
			{"user", "user_id", KindUUID},
			{"createdAt", "created_at", KindTime},
		},
	}

	// PopulateBootcamp embeds name and description of a course's or
	// review's bootcamp.
	PopulateBootcamp = query.Populate{
		Path:         "bootcamp",
		Collection:   CollectionBootcamps,
		LocalField:   "bootcamp",
		ForeignField: "id",
		Select:       []string{"name", "description"},
	}

	// PopulateCourses embeds every course of a bootcamp.
	PopulateCourses = query.Populate{
		Path:         "courses",
		Collection:   CollectionCourses,
		LocalField:   "id",
		ForeignField: "bootcamp",
		Many:         true,
	}

	registry = map[string]*Collection{
		CollectionUsers:     Users,
		CollectionBootcamps: Bootcamps,
		CollectionCourses:   Courses,
		CollectionReviews:   Reviews,
	}
)

var jsonKeyRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (c *Collection) field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// target resolves a filter or sort key. Dotted keys reach into JSON columns
// ("location.city" compares location->>'city' as text).
func (c *Collection) target(key string) (expr string, f Field, err error) {
	name, sub, dotted := strings.Cut(key, ".")
	f, ok := c.field(name)
	if !ok {
		return "", Field{}, apperror.Validation("Unknown field %q", key)
	}
	if !dotted {
		return f.Column, f, nil
	}
	if f.Kind != KindJSON || !jsonKeyRe.MatchString(sub) {
		return "", Field{}, apperror.Validation("Unknown field %q", key)
	}
	return f.Column + "->>'" + sub + "'", Field{Name: key, Column: f.Column, Kind: KindText}, nil
}

func (f Field) selectExpr() string {
	switch f.Kind {
	case KindUUID, KindJSON:
		return f.Column + "::text"
	}
	return f.Column
}

func (f Field) scanDest() any {
	switch f.Kind {
	case KindInt:
		return new(sql.NullInt64)
	case KindFloat:
		return new(sql.NullFloat64)
	case KindBool:
		return new(sql.NullBool)
	case KindTime:
		return new(sql.NullTime)
	}
	return new(sql.NullString)
}

func (f Field) scanned(dest any) any {
	switch d := dest.(type) {
	case *sql.NullInt64:
		if d.Valid {
			return d.Int64
		}
	case *sql.NullFloat64:
		if d.Valid {
			return d.Float64
		}
	case *sql.NullBool:
		if d.Valid {
			return d.Bool
		}
	case *sql.NullTime:
		if d.Valid {
			return d.Time
		}
	case *sql.NullString:
		if !d.Valid {
			return nil
		}
		if f.Kind == KindJSON {
			return json.RawMessage(d.String)
		}
		return d.String
	}
	return nil
}

// parse converts a raw query-string value into the column's type.
func (f Field) parse(raw string) (any, error) {
	switch f.Kind {
	case KindUUID:
		if _, err := uuid.Parse(raw); err != nil {
			return nil, apperror.NotFound("Resource not found with id of %s", raw)
		}
		return raw, nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperror.Validation("Invalid value %q for %s", raw, f.Name)
		}
		return n, nil
	case KindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.Validation("Invalid value %q for %s", raw, f.Name)
		}
		return n, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid value %q for %s", raw, f.Name)
		}
		return b, nil
	case KindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, apperror.Validation("Invalid value %q for %s", raw, f.Name)
	case KindJSON:
		return nil, apperror.Validation("Field %s can only be filtered by its sub-fields", f.Name)
	}
	return raw, nil
}
