package model

import (
	"time"

	"github.com/google/uuid"
)

type MissionCategory string

const (
	CategoryFitness     MissionCategory = "FITNESS"
	CategoryMindfulness MissionCategory = "MINDFULNESS"
	CategoryNutrition   MissionCategory = "NUTRITION"
	CategorySocial      MissionCategory = "SOCIAL"
	CategoryOutdoor     MissionCategory = "OUTDOOR"
)

type MissionDifficulty string

const (
	DifficultyEasy   MissionDifficulty = "EASY"
	DifficultyMedium MissionDifficulty = "MEDIUM"
	DifficultyHard   MissionDifficulty = "HARD"
)

// MissionSubtype is the discriminator of the mission payload variant.
// DISTANCE carries RequiredMeters, TIMER carries RequiredSeconds,
// PHOTO and VISIT carry no payload.
type MissionSubtype string

const (
	SubtypeDistance MissionSubtype = "DISTANCE"
	SubtypeTimer    MissionSubtype = "TIMER"
	SubtypePhoto    MissionSubtype = "PHOTO"
	SubtypeVisit    MissionSubtype = "VISIT"
)

type MissionStatus string

const (
	StatusAssigned  MissionStatus = "ASSIGNED"
	StatusStarted   MissionStatus = "STARTED"
	StatusPaused    MissionStatus = "PAUSED"
	StatusCompleted MissionStatus = "COMPLETED"
)

// MissionDefinition is a catalog entry: the reusable template describing a
// task. The engine only ever reads definitions; only the admin surface
// writes them. The subtype is immutable once created.
type MissionDefinition struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    MissionCategory
	Difficulty  MissionDifficulty
	Subtype     MissionSubtype

	// Exactly one of these is set, matching Subtype; both nil for
	// PHOTO and VISIT.
	RequiredMeters  *int
	RequiredSeconds *int

	CreatedAt time.Time
}

// MissionRecord is one user's instance of a definition for one calendar
// day. Title through Subtype are snapshot copies taken at assignment time;
// later catalog edits never reach a record. MissionID is kept for
// traceability only.
type MissionRecord struct {
	ID        uuid.UUID
	UserID    int64
	MissionID uuid.UUID

	Title       string
	Description string
	Category    MissionCategory
	Difficulty  MissionDifficulty
	Subtype     MissionSubtype

	Status MissionStatus

	RequiredMeters  *int
	ProgressMeters  *int
	RequiredSeconds *int
	ProgressSeconds *int

	AssignedDate time.Time
	CompletedAt  *time.Time

	FeedbackComment    *string
	FeedbackDifficulty *MissionDifficulty
	FeedbackImageURL   *string
}

// NewRecordFromDefinition materializes the assignment-time snapshot,
// branching on subtype to seed the matching target/progress pair.
func NewRecordFromDefinition(def *MissionDefinition, userID int64, assignedDate time.Time) *MissionRecord {
	rec := &MissionRecord{
		ID:           uuid.New(),
		UserID:       userID,
		MissionID:    def.ID,
		Title:        def.Title,
		Description:  def.Description,
		Category:     def.Category,
		Difficulty:   def.Difficulty,
		Subtype:      def.Subtype,
		Status:       StatusAssigned,
		AssignedDate: assignedDate,
	}

	// Target values are copied, not aliased, so later catalog edits never
	// leak into the record.
	switch def.Subtype {
	case SubtypeDistance:
		meters := 0
		if def.RequiredMeters != nil {
			target := *def.RequiredMeters
			rec.RequiredMeters = &target
		}
		rec.ProgressMeters = &meters
	case SubtypeTimer:
		seconds := 0
		if def.RequiredSeconds != nil {
			target := *def.RequiredSeconds
			rec.RequiredSeconds = &target
		}
		rec.ProgressSeconds = &seconds
	case SubtypePhoto, SubtypeVisit:
	}

	return rec
}
