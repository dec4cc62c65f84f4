package router

import (
	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/container"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/cache"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/geocoder"
	pginfra "github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/search"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/router/modules"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// Deps holds the services and handlers built from the container.
type Deps struct {
	Auth      *app.AuthService
	Costs     *app.AverageCostMaintainer
	Bootcamps *app.BootcampService

	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	BootcampHandler *handlers.BootcampHandler
	CourseHandler   *handlers.CourseHandler
	ReviewHandler   *handlers.ReviewHandler

	UserFinder     *pginfra.Finder
	BootcampFinder *pginfra.Finder
	CourseFinder   *pginfra.Finder
	ReviewFinder   *pginfra.Finder
}

// BuildDeps wires repositories, services and handlers. The container must
// be populated first.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetDB()
	rdb := container.GetRedis()

	users := pginfra.NewUserRepository(db)
	bootcamps := pginfra.NewBootcampRepository(db)
	courses := pginfra.NewCourseRepository(db)
	reviews := pginfra.NewReviewRepository(db)

	geo := geocoder.NewMapQuest(geocoder.Config{
		BaseURL: cfg.GeocoderBaseURL,
		APIKey:  cfg.GeocoderAPIKey,
		Timeout: cfg.GeocoderTimeout,
	}, rdb)
	index := search.NewBootcampIndex(container.GetES(), cfg.ESBootcampsIndex)

	d := Deps{
		UserFinder:     pginfra.NewFinder(db, pginfra.Users),
		BootcampFinder: pginfra.NewFinder(db, pginfra.Bootcamps),
		CourseFinder:   pginfra.NewFinder(db, pginfra.Courses),
		ReviewFinder:   pginfra.NewFinder(db, pginfra.Reviews),
	}

	d.Auth = app.NewAuthService(users, container.GetJWT(), container.GetMailer(), cfg.AppName, cfg.ResetTokenTTL, logger)
	d.Costs = app.NewAverageCostMaintainer(bootcamps, courses, cache.NewStaleSet(rdb), logger)
	d.Bootcamps = app.NewBootcampService(bootcamps, geo, container.GetPhotoStore(), index, cfg.MaxFileUpload, logger)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.IsProduction())
	d.AuthHandler = handlers.NewAuthHandler(d.Auth, cookies, cfg.JWTCookieExpire, cfg.PublicBaseURL)
	d.UserHandler = handlers.NewUserHandler(app.NewUserService(users))
	d.BootcampHandler = handlers.NewBootcampHandler(d.Bootcamps, d.BootcampFinder, cfg.MaxFileUpload)
	d.CourseHandler = handlers.NewCourseHandler(app.NewCourseService(courses, bootcamps, d.Costs), d.CourseFinder)
	d.ReviewHandler = handlers.NewReviewHandler(app.NewReviewService(reviews, bootcamps), d.ReviewFinder)
	return d
}

// InitModules registers every feature module with the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, d Deps) {
	rdb := container.GetRedis()

	r.Add(modules.NewAuthModule(d.AuthHandler, d.Auth, rdb))
	r.Add(modules.NewUserModule(d.UserHandler, d.Auth, d.UserFinder))
	r.Add(modules.NewBootcampModule(d.BootcampHandler, d.CourseHandler, d.ReviewHandler, d.Auth, d.BootcampFinder))
	r.Add(modules.NewCourseModule(d.CourseHandler, d.Auth, d.CourseFinder))
	r.Add(modules.NewReviewModule(d.ReviewHandler, d.ReviewFinder))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
