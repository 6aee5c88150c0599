package http

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app/capture"
	"github.com/dkeye/Meet/internal/app/session"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
)

type handlers struct {
	cfg     *config.Config
	session *session.Machine
	capture *capture.Controller
	picker  *PendingPicker
	rooms   Rooms
	limiter *JoinLimiter
}

type joinRequest struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Room   string `json:"room"`
	Create bool   `json:"create"`
}

func (h *handlers) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// join checks both permissions, obtains a token when none is given and
// connects. The last room joined is remembered in the client session.
func (h *handlers) join(c *gin.Context) {
	client := c.GetString("client_token")
	if !h.limiter.Allow(client) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many join attempts"})
		return
	}

	var req joinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid join request")
			return
		}
	}
	ctx := c.Request.Context()

	for _, kind := range []domain.PermissionKind{domain.PermissionCamera, domain.PermissionMicrophone} {
		if _, err := h.capture.EnsurePermission(ctx, kind); err != nil {
			renderError(c, err)
			return
		}
	}

	sess := sessions.Default(c)
	if req.Room == "" {
		if last, ok := sess.Get("room").(string); ok {
			req.Room = last
		} else {
			req.Room = h.cfg.Room
		}
	}
	if req.URL == "" {
		req.URL = h.cfg.ServerURL
	}
	if req.Token == "" {
		if h.rooms == nil {
			badRequest(c, "token required")
			return
		}
		if req.Create {
			room, err := h.rooms.CreateRoom(ctx)
			if err != nil {
				renderError(c, fmt.Errorf("create room: %w: %w", domain.ErrConnectionFailed, err))
				return
			}
			req.Room, req.Token = room.Room, room.Token
		} else {
			tok, err := h.rooms.Token(ctx, req.Room)
			if err != nil {
				renderError(c, fmt.Errorf("room token: %w: %w", domain.ErrConnectionFailed, err))
				return
			}
			req.Token = tok
		}
	}

	if err := h.session.Join(ctx, req.URL, req.Token); err != nil {
		renderError(c, err)
		return
	}
	sess.Set("room", req.Room)
	if err := sess.Save(); err != nil {
		log.Warn().Str("module", "adapters.http").Err(err).Msg("session save failed")
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *handlers) leave(c *gin.Context) {
	if err := h.session.Leave(c.Request.Context()); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *handlers) setTrack(c *gin.Context) {
	kind, err := domain.ParseTrackKind(c.Param("kind"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var intent domain.TrackIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		badRequest(c, "invalid track intent")
		return
	}
	if err := h.session.SetTrackIntent(c.Request.Context(), kind, intent.Enabled); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *handlers) getRoster(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"participants": h.session.Snapshot().Participants})
}

func (h *handlers) getParticipant(c *gin.Context) {
	p, ok := h.session.Lookup(domain.Identity(c.Param("identity")))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) getCapture(c *gin.Context) {
	c.JSON(http.StatusOK, h.capture.Snapshot())
}

func (h *handlers) ensurePermission(c *gin.Context) {
	kind := domain.PermissionKind(c.Param("kind"))
	if kind != domain.PermissionCamera && kind != domain.PermissionMicrophone {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown permission"})
		return
	}
	res, err := h.capture.EnsurePermission(c.Request.Context(), kind)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "result": res})
}

// intentPatch applies only the fields present. Facing and flash are
// toggles on the controller, so they are compared against the current
// intent.
type intentPatch struct {
	HighFrameRate      *bool             `json:"high_frame_rate"`
	HDRRequested       *bool             `json:"hdr_requested"`
	NightModeRequested *bool             `json:"night_mode_requested"`
	Facing             *domain.Facing    `json:"facing"`
	Flash              *domain.FlashMode `json:"flash"`
}

func (h *handlers) patchIntent(c *gin.Context) {
	var p intentPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid intent")
		return
	}
	ctx := c.Request.Context()
	cur := h.capture.Intent()

	steps := []func() error{}
	if p.HighFrameRate != nil {
		steps = append(steps, func() error { return h.capture.SetHighFrameRate(ctx, *p.HighFrameRate) })
	}
	if p.HDRRequested != nil {
		steps = append(steps, func() error { return h.capture.SetHDR(ctx, *p.HDRRequested) })
	}
	if p.NightModeRequested != nil {
		steps = append(steps, func() error { return h.capture.SetNightMode(ctx, *p.NightModeRequested) })
	}
	if p.Facing != nil && *p.Facing != cur.Facing {
		steps = append(steps, func() error { return h.capture.FlipCamera(ctx) })
	}
	if p.Flash != nil && *p.Flash != cur.Flash {
		steps = append(steps, func() error { return h.capture.ToggleFlash(ctx) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			renderError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.capture.Snapshot())
}

func (h *handlers) startPreview(c *gin.Context) {
	if err := h.capture.StartPreview(c.Request.Context()); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.capture.Snapshot())
}

func (h *handlers) stopPreview(c *gin.Context) {
	if err := h.capture.StopPreview(); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.capture.Snapshot())
}

func (h *handlers) reinitialize(c *gin.Context) {
	h.capture.Reinitialize()
	c.JSON(http.StatusOK, h.capture.Snapshot())
}

// takePhoto captures and answers immediately; post-processing runs in the
// background.
func (h *handlers) takePhoto(c *gin.Context) {
	var opts domain.PhotoOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			badRequest(c, "invalid photo options")
			return
		}
	}
	media, err := h.capture.CapturePhoto(c.Request.Context(), opts)
	if err != nil {
		renderError(c, err)
		return
	}
	h.capture.Handoff(media)
	c.JSON(http.StatusOK, media)
}

func (h *handlers) getPicker(c *gin.Context) {
	if h.picker == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no picker on this platform"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": h.picker.Pending()})
}

func (h *handlers) answerPicker(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid picker answer")
		return
	}
	if h.picker == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no picker on this platform"})
		return
	}
	if err := h.picker.Answer(req.Confirm); err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
