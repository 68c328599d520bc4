package entity

import (
	"time"
)

type Quest struct {
	ID          string    `json:"id" firestore:"id"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Rule        QuestRule `json:"rule" firestore:"rule"`
	XPReward    int64     `json:"xpReward" firestore:"xpReward"`
	Active      bool      `json:"active" firestore:"active"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// QuestRule keeps requirements exactly as authored. They are parsed on
// every evaluation so that a malformed entry only drops itself.
type QuestRule struct {
	Requirements []interface{} `json:"requirements" firestore:"requirements"`
}

type QuestStatus string

const (
	QuestStatusCompleted  QuestStatus = "completed"
	QuestStatusInProgress QuestStatus = "in_progress"
)

type ProgressItem struct {
	QuestID           string `json:"questId"`
	Completed         bool   `json:"completed"`
	MetCount          int    `json:"metCount"`
	TotalRequirements int    `json:"totalRequirements"`
}

// CTA is the call-to-action link the dojo shows next to a quest.
type CTA struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

type QuestWithProgress struct {
	Quest
	ProgressItem
	Status QuestStatus `json:"status"`
	CTA    *CTA        `json:"cta,omitempty"`
}
