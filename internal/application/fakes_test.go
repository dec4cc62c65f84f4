package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
)

var errBoom = errors.New("boom")

func newTestLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*entity.User
	seq    int
	update error
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*entity.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.Email == u.Email {
			return apperror.Validation("Duplicate field value entered: email")
		}
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("User not found with id of %s", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("There is no user with email %s", email)
}

func (f *fakeUsers) GetByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ResetPasswordToken == hash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("Invalid token")
}

func (f *fakeUsers) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.update != nil {
		return f.update
	}
	if _, ok := f.byID[u.ID]; !ok {
		return apperror.NotFound("User not found with id of %s", u.ID)
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("User not found with id of %s", id)
	}
	delete(f.byID, id)
	return nil
}

type fakeBootcamps struct {
	mu       sync.Mutex
	byID     map[string]*entity.Bootcamp
	seq      int
	costs    map[string]*float64
	setCost  error
	radius   [3]float64
	photo    string
	deleted  []string
	costHits int
}

func newFakeBootcamps(list ...*entity.Bootcamp) *fakeBootcamps {
	f := &fakeBootcamps{byID: map[string]*entity.Bootcamp{}, costs: map[string]*float64{}}
	for _, b := range list {
		f.byID[b.ID] = b
	}
	return f
}

func (f *fakeBootcamps) Create(_ context.Context, b *entity.Bootcamp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = fmt.Sprintf("bootcamp-%d", f.seq)
	if b.Photo == "" {
		b.Photo = entity.DefaultPhoto
	}
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBootcamps) GetByID(_ context.Context, id string) (*entity.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("Bootcamp not found with id of %s", id)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBootcamps) Update(_ context.Context, b *entity.Bootcamp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBootcamps) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBootcamps) HasBootcamp(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBootcamps) WithinRadius(_ context.Context, lat, lng, radius float64) ([]entity.Bootcamp, error) {
	f.radius = [3]float64{lat, lng, radius}
	return []entity.Bootcamp{}, nil
}

func (f *fakeBootcamps) SetAverageCost(ctx context.Context, id string, cost *float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.costHits++
	if f.setCost != nil {
		return f.setCost
	}
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("Bootcamp not found with id of %s", id)
	}
	f.costs[id] = cost
	f.byID[id].AverageCost = cost
	return nil
}

func (f *fakeBootcamps) SetPhoto(_ context.Context, id, photo string) error {
	f.photo = photo
	f.byID[id].Photo = photo
	return nil
}

type fakeCourses struct {
	mu   sync.Mutex
	byID map[string]*entity.Course
	seq  int
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{byID: map[string]*entity.Course{}}
}

func (f *fakeCourses) Create(_ context.Context, c *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c.ID = fmt.Sprintf("course-%d", f.seq)
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) GetByID(_ context.Context, id string) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("No course with the id of %s", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) Update(_ context.Context, c *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeCourses) ListByBootcamp(_ context.Context, bootcampID string) ([]entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Course{}
	for _, c := range f.byID {
		if c.BootcampID == bootcampID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourses) AverageTuition(_ context.Context, bootcampID string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	n := 0
	for _, c := range f.byID {
		if c.BootcampID == bootcampID {
			sum += c.Tuition
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

type fakeGeocoder struct {
	loc   entity.Location
	err   error
	calls []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (entity.Location, error) {
	g.calls = append(g.calls, address)
	return g.loc, g.err
}

type fakePhotos struct {
	name string
	body string
	err  error
}

func (p *fakePhotos) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	b, _ := io.ReadAll(r)
	p.name, p.body = name, string(b)
	return "https://cdn.example.com/photos/" + name, nil
}

type fakeSearch struct {
	indexed []string
	deleted []string
	err     error
	hits    []map[string]any
}

func (s *fakeSearch) Index(_ context.Context, b *entity.Bootcamp) error {
	s.indexed = append(s.indexed, b.ID)
	return s.err
}

func (s *fakeSearch) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *fakeSearch) Search(_ context.Context, _ string, _ int) ([]map[string]any, error) {
	return s.hits, s.err
}

type fakeStale struct {
	mu  sync.Mutex
	ids map[string]struct{}
	pop error
}

func newFakeStale(ids ...string) *fakeStale {
	s := &fakeStale{ids: map[string]struct{}{}}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *fakeStale) Add(ctx context.Context, ids ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}

func (s *fakeStale) Pop(_ context.Context, n int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pop != nil {
		return nil, s.pop
	}
	var out []string
	for id := range s.ids {
		if int64(len(out)) == n {
			break
		}
		out = append(out, id)
		delete(s.ids, id)
	}
	return out, nil
}

func (s *fakeStale) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

type fakeMail struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMail) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeReviews struct {
	list []entity.Review
}

func (f *fakeReviews) ListByBootcamp(_ context.Context, bootcampID string) ([]entity.Review, error) {
	out := []entity.Review{}
	for _, r := range f.list {
		if r.BootcampID == bootcampID {
			out = append(out, r)
		}
	}
	return out, nil
}
