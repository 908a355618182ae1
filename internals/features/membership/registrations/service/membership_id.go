package service

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

const DefaultIDPrefix = "CAG"

var reMembershipID = regexp.MustCompile(`^[A-Z0-9]+-\d{4}-\d{6,}$`)

// FormatMembershipID renders <PREFIX>-<YYYY>-<NNNNNN>.
func FormatMembershipID(prefix string, year int, seq int64) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

func IsMembershipID(s string) bool { return reMembershipID.MatchString(s) }

// NextSequence bumps the per-year counter and returns the new value. The upsert takes a row
// lock held until tx commits, so concurrent submissions are serialised on the year row.
func NextSequence(tx *gorm.DB, year int) (int64, error) {
	var next int64
	err := tx.Raw(`
		INSERT INTO membership_id_sequences (year, last_value)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = membership_id_sequences.last_value + 1
		RETURNING last_value`, year).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("membership id sequence: %w", err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("membership id sequence: no value returned for %d", year)
	}
	return next, nil
}
