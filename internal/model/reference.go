package model

import "time"

// ReferenceKind names one of the lookup tables a quiz can point at.
type ReferenceKind string

const (
	ReferenceChapters ReferenceKind = "chapters"
	ReferenceSubjects ReferenceKind = "subjects"
	ReferenceSeasons  ReferenceKind = "seasons"
)

// Valid reports whether k is a known reference kind.
func (k ReferenceKind) Valid() bool {
	switch k {
	case ReferenceChapters, ReferenceSubjects, ReferenceSeasons:
		return true
	}
	return false
}

// Reference is a chapter, subject or season a quiz can be filed under.
type Reference struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReferenceRequest is the payload for creating or renaming a reference.
type ReferenceRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
