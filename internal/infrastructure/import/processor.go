package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ImportProcessor validates uploaded CSV files against field rules before
// any rows are written. Reference and uniqueness lookups are injected by
// the import services so this package stays free of repository types.
type ImportProcessor struct {
	maxFileSize     int64
	maxRows         int
	maxErrors       int
	previewRows     int
	referenceLookup func(refType, value string) (bool, error)
	uniqueLookup    func(entityType, field, value string) (bool, error)
}

// ProcessorOption customizes an ImportProcessor.
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize caps the accepted upload size in bytes.
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) { p.maxFileSize = size }
}

// WithMaxRows caps how many data rows a file may contain.
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxRows = rows }
}

// WithMaxErrors caps how many row errors are retained in the result.
func WithMaxErrors(n int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxErrors = n }
}

// WithPreviewRows sets how many valid rows are echoed back as a preview.
func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.previewRows = rows }
}

// WithReferenceLookup wires resolution of referenced records, such as
// expense categories looked up by name.
func WithReferenceLookup(fn func(refType, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.referenceLookup = fn }
}

// WithUniqueLookup wires database uniqueness checks, such as client
// emails that must not already exist for the company.
func WithUniqueLookup(fn func(entityType, field, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.uniqueLookup = fn }
}

// NewImportProcessor builds a processor with sane limits for interactive
// uploads: 10 MB, 100k rows, 100 retained errors, 5 preview rows.
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 10 * 1024 * 1024,
		maxRows:     100_000,
		maxErrors:   100,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks every row of the file against the rules without writing
// anything. The session is updated in place: StateValidated when clean,
// StateFailed when any row is bad.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, error) {
	if p.maxFileSize > 0 && session.FileSize > p.maxFileSize {
		session.UpdateState(StateFailed)
		return nil, ErrFileTooLarge
	}

	session.UpdateState(StateValidating)

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}

	errs := NewErrorCollection(p.maxErrors)
	checker := newRuleChecker(rules)
	refs := newLookupCache(p.referenceLookup)
	result := &ValidationResult{ValidationID: session.ID.String()}

	var total, valid, errored int
	for {
		if err := ctx.Err(); err != nil {
			session.UpdateState(StateCancelled)
			return nil, err
		}

		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			errored++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		total++
		if total > p.maxRows {
			errs.Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			errored++
			break
		}

		ok := checker.check(row, errs)
		if !p.checkLookups(session, rules, row, refs, errs) {
			ok = false
		}

		if !ok {
			errored++
			continue
		}
		valid++
		if len(result.Preview) < p.previewRows {
			preview := make(map[string]any, len(row.Data))
			for k, v := range row.Data {
				preview[k] = v
			}
			result.Preview = append(result.Preview, preview)
		}
	}

	result.TotalRows = total
	result.ValidRows = valid
	result.ErrorRows = errored
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	session.SetValidationResult(result)
	if errored > 0 {
		session.UpdateState(StateFailed)
	} else {
		session.UpdateState(StateValidated)
	}
	return result, nil
}

// checkLookups runs the reference and uniqueness rules that need the
// injected lookup functions.
func (p *ImportProcessor) checkLookups(session *ImportSession, rules []FieldRule, row *Row, refs *lookupCache, errs *ErrorCollection) bool {
	ok := true
	for _, rule := range rules {
		value := row.Get(rule.Column)
		if value == "" {
			continue
		}

		if rule.Reference != "" && refs != nil {
			exists, err := refs.exists(rule.Reference, value)
			switch {
			case err != nil:
				errs.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportValidation,
					fmt.Sprintf("error checking %s reference: %v", rule.Reference, err)))
				ok = false
			case !exists:
				errs.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportReferenceNotFound,
					fmt.Sprintf("%s '%s' not found", rule.Reference, value), value))
				ok = false
			}
		}

		if rule.Unique && p.uniqueLookup != nil {
			taken, err := p.uniqueLookup(string(session.EntityType), rule.Column, value)
			switch {
			case err != nil:
				errs.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportValidation,
					fmt.Sprintf("error checking uniqueness: %v", err)))
				ok = false
			case taken:
				errs.Add(NewRowErrorWithValue(row.LineNumber, rule.Column, ErrCodeImportDuplicateInDB,
					fmt.Sprintf("value '%s' already exists in database", value), value))
				ok = false
			}
		}
	}
	return ok
}

// lookupCache memoizes reference lookups so repeated values, like the
// same category on hundreds of expense rows, hit the database once.
type lookupCache struct {
	lookup func(refType, value string) (bool, error)
	known  map[string]map[string]bool
}

func newLookupCache(lookup func(refType, value string) (bool, error)) *lookupCache {
	if lookup == nil {
		return nil
	}
	return &lookupCache{
		lookup: lookup,
		known:  make(map[string]map[string]bool),
	}
}

func (c *lookupCache) exists(refType, value string) (bool, error) {
	if byValue, ok := c.known[refType]; ok {
		if exists, ok := byValue[value]; ok {
			return exists, nil
		}
	}
	exists, err := c.lookup(refType, value)
	if err != nil {
		return false, err
	}
	if c.known[refType] == nil {
		c.known[refType] = make(map[string]bool)
	}
	c.known[refType][value] = exists
	return exists, nil
}
