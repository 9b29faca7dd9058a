package csvimport

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected shape of a column's values.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
	TypeBool    FieldType = "bool"
)

const defaultDateFormat = "2006-01-02"

// FieldRule declares how one CSV column is validated.
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MinLength  int
	MaxLength  int
	MinValue   *decimal.Decimal
	MaxValue   *decimal.Decimal
	DateFormat string
	Unique     bool
	Reference  string
	CustomFunc func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently. Import services declare
// their column rules with Field("name").Required().String()...Build().
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column. The type defaults to string
// and dates default to YYYY-MM-DD.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{
		Column:     column,
		Type:       TypeString,
		DateFormat: defaultDateFormat,
	}}
}

// Required rejects blank values for this column.
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String expects free text.
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Int expects a base-10 integer.
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal expects a decimal number.
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date expects a date in the configured format.
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// DateFormat overrides the expected date layout.
func (b *FieldRuleBuilder) DateFormat(layout string) *FieldRuleBuilder {
	b.rule.DateFormat = layout
	return b
}

// Email expects an RFC 5322 address.
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// Bool expects true/false, yes/no, y/n or 1/0.
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

// MinLength sets the minimum value length in bytes.
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MaxLength sets the maximum value length in bytes.
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinValue sets the numeric lower bound, inclusive.
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// MaxValue sets the numeric upper bound, inclusive.
func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Range sets both numeric bounds, inclusive.
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Unique rejects values that repeat within the file or already exist in
// the database when a uniqueness lookup is configured.
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Reference marks the column as a lookup against existing records of the
// given kind, resolved through the processor's reference lookup.
func (b *FieldRuleBuilder) Reference(kind string) *FieldRuleBuilder {
	b.rule.Reference = kind
	return b
}

// Custom attaches an arbitrary per-value check.
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build finalizes the rule.
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// ruleChecker applies field rules to rows, tracking in-file duplicates.
type ruleChecker struct {
	rules []FieldRule
	// column -> value -> line where it was first seen
	seen map[string]map[string]int
}

func newRuleChecker(rules []FieldRule) *ruleChecker {
	return &ruleChecker{
		rules: rules,
		seen:  make(map[string]map[string]int),
	}
}

// check validates one row against every rule, appending failures to errs.
// It returns false if any rule failed.
func (c *ruleChecker) check(row *Row, errs *ErrorCollection) bool {
	ok := true
	for _, rule := range c.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				errs.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportRequiredField,
					fmt.Sprintf("field '%s' is required", rule.Column)))
				ok = false
			}
			continue
		}

		if err := parseTyped(value, rule); err != nil {
			errs.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportInvalidType,
				fmt.Sprintf("expected %s", rule.Type), value))
			ok = false
			continue
		}

		if !c.checkBounds(row, rule, value, errs) {
			ok = false
		}

		if rule.Unique && !c.checkFirstSeen(row, rule, value, errs) {
			ok = false
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				errs.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportValidation, err.Error()))
				ok = false
			}
		}
	}
	return ok
}

func (c *ruleChecker) checkBounds(row *Row, rule FieldRule, value string, errs *ErrorCollection) bool {
	ok := true
	if (rule.MinLength > 0 && len(value) < rule.MinLength) ||
		(rule.MaxLength > 0 && len(value) > rule.MaxLength) {
		errs.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportInvalidLength,
			lengthMessage(rule.MinLength, rule.MaxLength)))
		ok = false
	}

	if (rule.Type == TypeInt || rule.Type == TypeDecimal) &&
		(rule.MinValue != nil || rule.MaxValue != nil) {
		// Type check already passed, so the value parses
		d, err := decimal.NewFromString(value)
		if err == nil {
			if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) ||
				(rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
				errs.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportInvalidRange,
					rangeMessage(rule.MinValue, rule.MaxValue), value))
				ok = false
			}
		}
	}
	return ok
}

func (c *ruleChecker) checkFirstSeen(row *Row, rule FieldRule, value string, errs *ErrorCollection) bool {
	if c.seen[rule.Column] == nil {
		c.seen[rule.Column] = make(map[string]int)
	}
	if first, dup := c.seen[rule.Column][value]; dup {
		errs.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportDuplicateInFile,
			fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first), value))
		return false
	}
	c.seen[rule.Column][value] = row.LineNumber
	return true
}

func parseTyped(value string, rule FieldRule) error {
	switch rule.Type {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(rule.DateFormat, value)
		return err
	case TypeEmail:
		_, err := mail.ParseAddress(value)
		return err
	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "false", "yes", "no", "y", "n", "1", "0":
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	}
	return nil
}

func lengthMessage(min, max int) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("length must be between %d and %d", min, max)
	case max > 0:
		return fmt.Sprintf("length must be at most %d", max)
	default:
		return fmt.Sprintf("length must be at least %d", min)
	}
}

func rangeMessage(min, max *decimal.Decimal) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("value must be between %s and %s", min, max)
	case max != nil:
		return fmt.Sprintf("value must be at most %s", max)
	default:
		return fmt.Sprintf("value must be at least %s", min)
	}
}
