package internal

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"sports-platform/internal/auth"
)

const serviceName = "sports-platform"

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerReqID},
		ExposeHeaders: []string{headerReqID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the HTTP API.
func NewRouter(d *Deps) *gin.Engine {
	d.defaults()
	registerValidators()

	r := gin.New()
	r.Use(RequestID(), AccessLog(d.Log), d.Metrics.Middleware(), Recovery(d.Log))
	if d.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d.Store.Ping != nil {
			if err := d.Store.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authed := Auth(d)

	api := r.Group("/api")
	{
		api.POST("/auth/register", Register(d))
		api.POST("/auth/login", Login(d))
		api.POST("/auth/refresh", Refresh(d))
		api.GET("/auth/me", authed, Me(d))

		api.GET("/institutions", ListInstitutions(d))
		api.GET("/institutions/:id", GetInstitution(d))
		api.GET("/institutions/:id/athletes", authed, InstitutionAthletes(d))

		inst := api.Group("/institution", authed, Allow(auth.InstitutionRoster))
		{
			inst.GET("/athletes", MyAthletes(d))
			inst.POST("/athletes", RegisterAthlete(d))
			inst.PUT("/athletes/:id", UpdateAthlete(d))
		}

		users := api.Group("/users", authed)
		{
			users.GET("/athletes", ListAthletes(d))
			users.GET("/sponsors", ListSponsors(d))
			users.PUT("/me", UpdateMe(d))
			users.POST("/me/image", UploadMyImage(d))
			users.GET("/:id", GetUser(d))
		}

		api.GET("/tournaments", ListTournaments(d))
		api.GET("/tournaments/:id", GetTournament(d))
		tours := api.Group("/tournaments", authed)
		{
			tours.POST("", Allow(auth.TournamentCreate), CreateTournament(d))
			tours.PUT("/:id", UpdateTournament(d))
			tours.DELETE("/:id", DeleteTournament(d))
			tours.POST("/:id/close", SetRegistration(d, false))
			tours.POST("/:id/open", SetRegistration(d, true))
			tours.POST("/:id/image", UploadTournamentImage(d))
		}

		apps := api.Group("/applications", authed)
		{
			apps.POST("", Allow(auth.ApplicationCreate), CreateApplication(d))
			apps.GET("/mine", MyApplications(d))
			apps.GET("", Allow(auth.ApplicationList), ListApplications(d))
			apps.PUT("/:id/status", Allow(auth.ApplicationStatus), SetApplicationStatus(d))
			apps.DELETE("/:id", DeleteApplication(d))
		}

		spons := api.Group("/sponsorships", authed)
		{
			spons.POST("", Allow(auth.SponsorshipCreate), CreateSponsorship(d))
			spons.GET("/mine", MySponsorships(d))
			spons.PUT("/:id/status", SetSponsorshipStatus(d))
			spons.DELETE("/:id", DeleteSponsorship(d))
		}

		api.GET("/winners", ListWinners(d))
		wins := api.Group("/winners", authed)
		{
			wins.POST("", Allow(auth.WinnerCreate), CreateWinner(d))
			wins.PUT("/:id", Allow(auth.WinnerUpdate), UpdateWinner(d))
			wins.DELETE("/:id", Allow(auth.WinnerDelete), DeleteWinner(d))
		}

		api.GET("/council", ListCouncil(d))

		admin := api.Group("/admin", authed)
		{
			admin.GET("/logs", Allow(auth.AuditRead), AdminLogs(d))

			au := admin.Group("/users", Allow(auth.UserAdmin))
			au.GET("", AdminUsers(d))
			au.PUT("/:id", AdminUpdateUser(d))
			au.DELETE("/:id", AdminDeleteUser(d))

			ai := admin.Group("/institutions", Allow(auth.InstitutionAdmin))
			ai.POST("", AdminCreateInstitution(d))
			ai.PUT("/:id", AdminUpdateInstitution(d))
			ai.DELETE("/:id", AdminDeleteInstitution(d))

			ac := admin.Group("/council", Allow(auth.CouncilAdmin))
			ac.POST("", AdminCreateCouncil(d))
			ac.PUT("/:id", AdminUpdateCouncil(d))
			ac.DELETE("/:id", AdminDeleteCouncil(d))
		}
	}
	return r
}
