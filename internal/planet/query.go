package planet

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Operator selects how the moon filter compares stored moon counts with the requested value
type Operator int

const (
	OperatorEq Operator = iota
	OperatorGt
	OperatorLt
	OperatorGte
	OperatorLte
)

// ParseOperator maps a comparison token to an Operator. Unknown or empty tokens select OperatorEq.
func ParseOperator(token string) Operator {
	switch token {
	case "gt":
		return OperatorGt
	case "lt":
		return OperatorLt
	case "gte":
		return OperatorGte
	case "lte":
		return OperatorLte
	default:
		return OperatorEq
	}
}

func (o Operator) String() string {
	switch o {
	case OperatorGt:
		return "gt"
	case OperatorLt:
		return "lt"
	case OperatorGte:
		return "gte"
	case OperatorLte:
		return "lte"
	default:
		return "eq"
	}
}

// SQL returns the SQL comparison operator
func (o Operator) SQL() string {
	switch o {
	case OperatorGt:
		return ">"
	case OperatorLt:
		return "<"
	case OperatorGte:
		return ">="
	case OperatorLte:
		return "<="
	default:
		return "="
	}
}

// Matches reports whether value satisfies "value <op> target"
func (o Operator) Matches(value, target int) bool {
	switch o {
	case OperatorGt:
		return value > target
	case OperatorLt:
		return value < target
	case OperatorGte:
		return value >= target
	case OperatorLte:
		return value <= target
	default:
		return value == target
	}
}

// SortField selects the ordering of list results
type SortField int

const (
	SortByID SortField = iota
	SortByName
	SortByNameDesc
	SortByMoon
	SortByMoonDesc
)

// ParseSort maps a sort token to a SortField. Unknown or empty tokens select SortByID.
func ParseSort(token string) SortField {
	switch token {
	case "name":
		return SortByName
	case "name_desc":
		return SortByNameDesc
	case "moon":
		return SortByMoon
	case "moon_desc":
		return SortByMoonDesc
	default:
		return SortByID
	}
}

func (s SortField) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByNameDesc:
		return "name_desc"
	case SortByMoon:
		return "moon"
	case SortByMoonDesc:
		return "moon_desc"
	default:
		return "id"
	}
}

// OrderBy returns the ORDER BY clause body. Ties fall back to ascending id.
func (s SortField) OrderBy() string {
	switch s {
	case SortByName:
		return "name ASC, id ASC"
	case SortByNameDesc:
		return "name DESC, id ASC"
	case SortByMoon:
		return "moon ASC, id ASC"
	case SortByMoonDesc:
		return "moon DESC, id ASC"
	default:
		return "id ASC"
	}
}

func (s SortField) less(a, b Planet) bool {
	switch s {
	case SortByName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	case SortByNameDesc:
		if a.Name != b.Name {
			return a.Name > b.Name
		}
	case SortByMoon:
		if a.Moon != b.Moon {
			return a.Moon < b.Moon
		}
	case SortByMoonDesc:
		if a.Moon != b.Moon {
			return a.Moon > b.Moon
		}
	}
	return a.ID < b.ID
}

// Sort orders planets in place
func (s SortField) Sort(planets []Planet) {
	sort.SliceStable(planets, func(i, j int) bool {
		return s.less(planets[i], planets[j])
	})
}

// Filter is the parsed form of a list request. Nil Moon means no moon predicate.
type Filter struct {
	Description  string
	Moon         *int
	MoonOperator Operator
	Sort         SortField
}

// DescriptionPattern is the LIKE pattern for the description predicate.
// Wildcards inside the requested text are passed through unescaped.
func (f Filter) DescriptionPattern() string {
	return "%" + f.Description + "%"
}

const selectColumns = "id, name, description, moon"

// buildListQuery renders the filter as a parameterised SELECT against the planet table
func buildListQuery(f Filter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if f.Description != "" {
		args = append(args, f.DescriptionPattern())
		conditions = append(conditions, fmt.Sprintf("description LIKE $%d", len(args)))
	}

	if f.Moon != nil {
		args = append(args, *f.Moon)
		conditions = append(conditions, fmt.Sprintf("moon %s $%d::bigint", f.MoonOperator.SQL(), len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + selectColumns + " FROM planet")
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(f.Sort.OrderBy())

	return b.String(), args
}

// likeMatcher compiles a SQL LIKE pattern ('%' any run, '_' any single character) into a regexp
func likeMatcher(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// Apply filters and orders planets in memory with the same semantics as buildListQuery
func (f Filter) Apply(planets []Planet) []Planet {
	var matcher *regexp.Regexp
	if f.Description != "" {
		matcher = likeMatcher(f.DescriptionPattern())
	}

	result := make([]Planet, 0, len(planets))
	for _, p := range planets {
		if matcher != nil && !matcher.MatchString(p.Description) {
			continue
		}
		if f.Moon != nil && !f.MoonOperator.Matches(p.Moon, *f.Moon) {
			continue
		}
		result = append(result, p)
	}

	f.Sort.Sort(result)
	return result
}
