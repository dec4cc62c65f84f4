package application

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// CourseService owns course writes and triggers the average cost
// recompute after each one that can change it.
type CourseService struct {
	Courses   repo.CourseRepository
	Bootcamps repo.BootcampRepository
	Costs     *AverageCostMaintainer
}

func NewCourseService(courses repo.CourseRepository, bootcamps repo.BootcampRepository, costs *AverageCostMaintainer) *CourseService {
	return &CourseService{Courses: courses, Bootcamps: bootcamps, Costs: costs}
}

type CourseInput struct {
	Title                *string
	Description          *string
	Weeks                *string
	Tuition              *float64
	MinimumSkill         *entity.Skill
	ScholarshipAvailable *bool
}

func (in CourseInput) apply(c *entity.Course) {
	setString(&c.Title, in.Title)
	setString(&c.Description, in.Description)
	setString(&c.Weeks, in.Weeks)
	if in.Tuition != nil {
		c.Tuition = *in.Tuition
	}
	if in.MinimumSkill != nil {
		c.MinimumSkill = *in.MinimumSkill
	}
	setBool(&c.ScholarshipAvailable, in.ScholarshipAvailable)
}

// ListByBootcamp returns every course of an existing bootcamp.
func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	if _, err := s.bootcamp(ctx, bootcampID); err != nil {
		return nil, err
	}
	return s.Courses.ListByBootcamp(ctx, bootcampID)
}

func (s *CourseService) Create(ctx context.Context, user *entity.User, bootcampID string, in CourseInput) (*entity.Course, error) {
	b, err := s.bootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if !user.Owns(b.UserID) && !user.IsAdmin() {
		return nil, apperror.NotOwner("User %s is not authorized to add a course to bootcamp %s", user.ID, b.ID)
	}

	c := &entity.Course{BootcampID: b.ID, UserID: user.ID, MinimumSkill: entity.SkillBeginner}
	in.apply(c)
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Costs.Recompute(ctx, c.BootcampID)
	return c, nil
}

// Update recomputes the bootcamp average when the tuition changed.
func (s *CourseService) Update(ctx context.Context, user *entity.User, id string, in CourseInput) (*entity.Course, error) {
	c, err := s.Owned(ctx, user, id, "update")
	if err != nil {
		return nil, err
	}
	tuition := c.Tuition
	in.apply(c)
	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	if c.Tuition != tuition {
		s.Costs.Recompute(ctx, c.BootcampID)
	}
	return c, nil
}

// Delete removes the course, then recomputes without it.
func (s *CourseService) Delete(ctx context.Context, user *entity.User, id string) error {
	c, err := s.Owned(ctx, user, id, "delete")
	if err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.Costs.Recompute(ctx, c.BootcampID)
	return nil
}

// Owned loads the course and fails NotOwner unless user wrote it or is an admin.
func (s *CourseService) Owned(ctx context.Context, user *entity.User, id, action string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Owns(c.UserID) && !user.IsAdmin() {
		return nil, apperror.NotOwner("User %s is not authorized to %s course %s", user.ID, action, c.ID)
	}
	return c, nil
}

func (s *CourseService) bootcamp(ctx context.Context, id string) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, id)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.NotFound("No bootcamp with the id of %s", id)
	}
	return b, err
}
