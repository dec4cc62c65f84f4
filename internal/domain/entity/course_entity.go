package entity

import "time"

type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

// Course belongs to one bootcamp and contributes its tuition to the
// bootcamp's average cost.
type Course struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Weeks                string    `json:"weeks"`
	Tuition              float64   `json:"tuition"`
	MinimumSkill         Skill     `json:"minimumSkill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	BootcampID           string    `json:"bootcamp"`
	UserID               string    `json:"user"`
	CreatedAt            time.Time `json:"createdAt"`
}
