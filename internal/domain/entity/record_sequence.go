package entity

import (
	"fmt"
	"regexp"
	"strconv"
)

// RecordSequence is a named monotonically increasing counter
type RecordSequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

func (RecordSequence) TableName() string {
	return "record_sequences"
}

// SequenceMRD is the sequence behind medical record numbers
const SequenceMRD = "mrd"

var mrdPattern = regexp.MustCompile(`^MRD-(\d+)$`)

// FormatMRD builds MRD-<NNNN>
func FormatMRD(n int64) string {
	return fmt.Sprintf("MRD-%04d", n)
}

// ParseMRD returns the sequence number of a medical record number that
// follows the MRD-<n> scheme.
func ParseMRD(mrd string) (int64, bool) {
	m := mrdPattern.FindStringSubmatch(mrd)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
