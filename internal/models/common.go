package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// SoftDelete marks records removed by account deletion. Rows are kept so the
// uid stays reserved; reads filter on is_deleted.
type SoftDelete struct {
	IsDeleted bool       `gorm:"not null;default:false;index" json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// MarkDeleted sets both soft-delete markers.
func (s *SoftDelete) MarkDeleted(at time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &at
}

// JSON columns are encoded through datatypes.JSONType; the column tag stays
// type:json so postgres and mysql share one schema.
func jsonColumnValue[T any](v T) (driver.Value, error) {
	b, err := datatypes.NewJSONType(v).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSONColumn[T any](src any, dst *T) error {
	if src == nil {
		return nil
	}
	var col datatypes.JSONType[T]
	if err := col.Scan(src); err != nil {
		return err
	}
	*dst = col.Data()
	return nil
}
