// Package http is the control API of the daemon: session, track and capture
// commands plus a websocket change stream.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/provision"
	"github.com/dkeye/Meet/internal/app/capture"
	"github.com/dkeye/Meet/internal/app/session"
	"github.com/dkeye/Meet/internal/config"
)

// Rooms issues room tokens.
type Rooms interface {
	CreateRoom(ctx context.Context) (provision.Room, error)
	Token(ctx context.Context, room string) (string, error)
}

type Deps struct {
	Session *session.Machine
	Capture *capture.Controller
	Picker  *PendingPicker
	// Rooms may be nil; joins must then carry a token.
	Rooms   Rooms
	Limiter *JoinLimiter
}

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MeetSessions", store))
	r.Use(ClientTokenMiddleware())

	h := &handlers{
		cfg:     cfg,
		session: deps.Session,
		capture: deps.Capture,
		picker:  deps.Picker,
		rooms:   deps.Rooms,
		limiter: deps.Limiter,
	}
	if h.limiter == nil {
		h.limiter = NewJoinLimiter(cfg.Control.JoinLimit, cfg.Control.JoinInterval)
	}

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	api := r.Group("/api")

	api.GET("/session", h.getSession)
	api.POST("/session/join", h.join)
	api.POST("/session/leave", h.leave)
	api.PUT("/tracks/:kind", h.setTrack)
	api.GET("/roster", h.getRoster)
	api.GET("/roster/:identity", h.getParticipant)

	api.GET("/capture", h.getCapture)
	api.POST("/capture/permissions/:kind", h.ensurePermission)
	api.PATCH("/capture/intent", h.patchIntent)
	api.POST("/capture/preview", h.startPreview)
	api.DELETE("/capture/preview", h.stopPreview)
	api.POST("/capture/reinitialize", h.reinitialize)
	api.POST("/capture/photo", h.takePhoto)

	api.GET("/screenshare/picker", h.getPicker)
	api.POST("/screenshare/picker", h.answerPicker)

	api.GET("/ws/events", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws events endpoint hit")
		h.events(ctx, c)
	})

	return r
}
