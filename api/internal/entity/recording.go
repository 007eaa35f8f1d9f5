package internal_entity

import (
	gorm_model "github.com/lullai/pkg/models/gorm"
	type_enums "github.com/lullai/pkg/types/enums"
)

// Recording is one classified capture. Rows are created on the explicit
// save action and never mutated afterwards; removal is a status flip so
// retention can purge on its own schedule.
type Recording struct {
	gorm_model.Audited
	RecordingId string                 `json:"recordingId" gorm:"column:recording_id;type:varchar(36);not null;uniqueIndex"`
	UserId      string                 `json:"userId" gorm:"column:user_id;type:varchar(100);not null;index"`
	Type        string                 `json:"type" gorm:"type:string;size:50;not null"`
	Urgency     string                 `json:"urgency" gorm:"type:string;size:20;not null"`
	Confidence  int                    `json:"confidence" gorm:"type:int;not null;default:0"`
	Action      string                 `json:"action" gorm:"type:text;not null;default:''"`
	AudioData   string                 `json:"audioData" gorm:"column:audio_data;type:text"`
	Status      type_enums.RecordState `json:"status" gorm:"type:string;size:50;not null;default:ACTIVE"`
}

// CREATE TABLE recordings (
//     id BIGINT PRIMARY KEY,
//     created_date TIMESTAMP NOT NULL DEFAULT NOW(),
//     updated_date TIMESTAMP,
//     recording_id VARCHAR(36) NOT NULL UNIQUE,
//     user_id VARCHAR(100) NOT NULL,
//     type VARCHAR(50) NOT NULL,
//     urgency VARCHAR(20) NOT NULL,
//     confidence INT NOT NULL DEFAULT 0,
//     action TEXT NOT NULL DEFAULT '',
//     audio_data TEXT,
//     status VARCHAR(50) NOT NULL DEFAULT 'ACTIVE'
// );
