package restaurant

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// anyTokenPattern builds a POSIX regex matching any token literally.
func anyTokenPattern(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return strings.Join(quoted, "|")
}

func nameEquals(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name = ?", name)
	}
}

func nameContains(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name ILIKE ?", containsPattern(name))
	}
}

func nameMatchesAny(tokens []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name ~* ?", anyTokenPattern(tokens))
	}
}

// attributeContains matches rows with at least one attribute containing s.
func attributeContains(s string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("EXISTS (SELECT 1 FROM unnest(attributes) AS a WHERE a ILIKE ?)", containsPattern(s))
	}
}

// attributesContainAll requires every token to be found in some attribute.
func attributesContainAll(tokens []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, tok := range tokens {
			db = attributeContains(tok)(db)
		}
		return db
	}
}
