package internal_entity

import (
	gorm_model "github.com/lullai/pkg/models/gorm"
	type_enums "github.com/lullai/pkg/types/enums"
)

type User struct {
	gorm_model.Audited
	Email        string                 `json:"email" gorm:"type:string;size:255;not null;uniqueIndex"`
	Name         string                 `json:"name" gorm:"type:string;size:100;not null;default:''"`
	PasswordHash string                 `json:"-" gorm:"column:password_hash;type:text;not null"`
	Status       type_enums.RecordState `json:"status" gorm:"type:string;size:50;not null;default:ACTIVE"`
}

// CREATE TABLE users (
//     id BIGINT PRIMARY KEY,
//     created_date TIMESTAMP NOT NULL DEFAULT NOW(),
//     updated_date TIMESTAMP,
//     email VARCHAR(255) NOT NULL UNIQUE,
//     name VARCHAR(100) NOT NULL DEFAULT '',
//     password_hash TEXT NOT NULL,
//     status VARCHAR(50) NOT NULL DEFAULT 'ACTIVE'
// );
