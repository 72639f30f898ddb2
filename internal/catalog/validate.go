package catalog

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// Validate checks the catalog structure and that every ID is unique.
func (c Catalog) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Pillars, validation.Required, validation.By(uniqueIDs)),
	)
}

// Validate checks a pillar and that its question IDs carry its abbreviation.
func (p Pillar) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Abbr, validation.Required, validation.Match(abbrPattern)),
		validation.Field(&p.Dir, validation.Required, validation.By(validDir)),
		validation.Field(&p.NavOrder, validation.Min(0)),
		validation.Field(&p.Questions, validation.By(func(any) error {
			for _, q := range p.Questions {
				if IDPrefix(q.ID) != p.Abbr {
					return validation.NewError("catalog.question.prefix",
						fmt.Sprintf("question %s does not belong to pillar %s", q.ID, p.Abbr))
				}
			}
			return nil
		})),
	)
}

// Validate checks a question and that its best practices belong to it.
func (q Question) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.ID, validation.Required, validation.Match(QuestionIDPattern)),
		validation.Field(&q.Title, validation.Required),
		validation.Field(&q.BestPractices, validation.By(func(any) error {
			for _, bp := range q.BestPractices {
				if QuestionOf(bp.ID) != q.ID {
					return validation.NewError("catalog.best_practice.question",
						fmt.Sprintf("best practice %s does not belong to question %s", bp.ID, q.ID))
				}
			}
			return nil
		})),
	)
}

// Validate checks a best practice.
func (bp BestPractice) Validate() error {
	return validation.ValidateStruct(&bp,
		validation.Field(&bp.ID, validation.Required, validation.Match(BestPracticeIDPattern)),
		validation.Field(&bp.Title, validation.Required),
	)
}

func validDir(value any) error {
	dir, _ := value.(string)
	if dir == "" {
		return nil
	}
	if !slug.IsValid(dir) || strings.Contains(dir, "/") {
		return validation.NewError("catalog.pillar.dir", "must be a lowercase slug")
	}
	return nil
}

func uniqueIDs(value any) error {
	pillars, _ := value.([]Pillar)
	seen := make(map[string]bool)
	var dups []string
	check := func(id string) {
		if id == "" {
			return
		}
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	for _, p := range pillars {
		check("pillar:" + p.Abbr)
		for _, q := range p.Questions {
			check(q.ID)
			for _, bp := range q.BestPractices {
				check(bp.ID)
			}
		}
	}
	if len(dups) > 0 {
		return validation.NewError("catalog.duplicate_id",
			"duplicate IDs: "+strings.Join(dups, ", "))
	}
	return nil
}

// IsValidationError reports whether err came from catalog validation.
func IsValidationError(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return true
	}
	var verr validation.Error
	return errors.As(err, &verr)
}
