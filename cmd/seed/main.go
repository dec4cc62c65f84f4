package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"flag"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/config"
	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	pginfra "github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

//go:embed data/*.json
var data embed.FS

type seedUser struct {
	entity.User
	Password string `json:"password"`
}

type seedBootcamp struct {
	entity.Bootcamp
	Owner string `json:"owner"`
}

type seedCourse struct {
	entity.Course
	Bootcamp string `json:"bootcamp"`
}

type seedReview struct {
	entity.Review
	Bootcamp string `json:"bootcamp"`
	Author   string `json:"author"`
}

func main() {
	importData := flag.Bool("i", false, "import seed data")
	destroyData := flag.Bool("d", false, "destroy all data")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		logger.WithError(err).Fatal("open db")
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	switch {
	case *destroyData:
		if err := destroy(ctx, db); err != nil {
			logger.WithError(err).Fatal("destroy data")
		}
		logger.Info("data destroyed")
	case *importData:
		if err := seed(ctx, db, logger); err != nil {
			logger.WithError(err).Fatal("import data")
		}
		logger.Info("data imported")
	default:
		flag.Usage()
	}
}

// destroy removes every user; bootcamps, courses and reviews follow through
// the cascade.
func destroy(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users`)
	return err
}

func seed(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	users := pginfra.NewUserRepository(db)
	bootcamps := pginfra.NewBootcampRepository(db)
	courses := pginfra.NewCourseRepository(db)
	costs := app.NewAverageCostMaintainer(bootcamps, courses, nil, logger)

	var (
		su []seedUser
		sb []seedBootcamp
		sc []seedCourse
		sr []seedReview
	)
	for name, dst := range map[string]any{
		"users": &su, "bootcamps": &sb, "courses": &sc, "reviews": &sr,
	} {
		if err := load(name, dst); err != nil {
			return err
		}
	}

	userIDs := map[string]string{}
	for _, s := range su {
		u := s.User
		hash, err := helpers.HashPassword(s.Password)
		if err != nil {
			return err
		}
		u.Password = hash
		if err := users.Create(ctx, &u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		userIDs[u.Email] = u.ID
	}

	bootcampIDs := map[string]string{}
	for _, s := range sb {
		b := s.Bootcamp
		b.Slug = helpers.Slugify(b.Name)
		b.UserID = userIDs[s.Owner]
		if err := bootcamps.Create(ctx, &b); err != nil {
			return fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		bootcampIDs[b.Name] = b.ID
	}

	for _, s := range sc {
		c := s.Course
		c.BootcampID = bootcampIDs[s.Bootcamp]
		if b, err := bootcamps.GetByID(ctx, c.BootcampID); err == nil {
			c.UserID = b.UserID
		}
		if err := courses.Create(ctx, &c); err != nil {
			return fmt.Errorf("course %s: %w", c.Title, err)
		}
	}
	for _, id := range bootcampIDs {
		costs.Recompute(ctx, id)
	}

	for _, s := range sr {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO reviews (title, text, rating, bootcamp_id, user_id)
			VALUES ($1, $2, $3, $4, $5)
		`, s.Title, s.Text, s.Rating, bootcampIDs[s.Bootcamp], userIDs[s.Author]); err != nil {
			return fmt.Errorf("review %s: %w", s.Title, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"users": len(su), "bootcamps": len(sb), "courses": len(sc), "reviews": len(sr),
	}).Info("seeded")
	return nil
}

func load(name string, dst any) error {
	b, err := data.ReadFile("data/" + name + ".json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
