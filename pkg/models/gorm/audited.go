package gorm_model

import (
	"time"

	"gorm.io/gorm"

	gorm_generator "github.com/lullai/pkg/models/gorm/generators"
)

// Audited is the embedded base for persisted entities: generated bigint
// primary key plus create/update timestamps.
type Audited struct {
	Id          uint64    `json:"id,string" gorm:"type:bigint;primaryKey;<-:create"`
	CreatedDate time.Time `json:"createdDate" gorm:"type:timestamp;not null;<-:create"`
	UpdatedDate time.Time `json:"updatedDate" gorm:"type:timestamp;default:null"`
}

func (a *Audited) BeforeCreate(tx *gorm.DB) (err error) {
	if a.Id <= 0 {
		a.Id = gorm_generator.ID()
	}
	if a.CreatedDate.IsZero() {
		a.CreatedDate = time.Now()
	}
	return nil
}
