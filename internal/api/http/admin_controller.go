package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nqh2610/lophoconline-sub002/internal/api/http/converter"
	"github.com/nqh2610/lophoconline-sub002/internal/repository"
)

const adminTokenHeader = "X-Admin-Token"

// AdminController is the operator-only debugging surface. It never registers
// its routes without a configured token, so the ordinary client protocol
// cannot reach it.
type AdminController struct {
	registry repository.RoomRegistry
	token    string
	log      *slog.Logger
}

func NewAdminController(registry repository.RoomRegistry, token string, log *slog.Logger) *AdminController {
	if log == nil {
		log = slog.Default()
	}
	return &AdminController{registry: registry, token: token, log: log}
}

func (c *AdminController) Enabled() bool {
	return c.token != ""
}

// Authorize is a gin middleware guarding the admin group. Unauthorized
// callers get a 404 rather than a 401 to keep the surface invisible.
func (c *AdminController) Authorize(ctx *gin.Context) {
	if !c.Enabled() || ctx.GetHeader(adminTokenHeader) != c.token {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ctx.Next()
}

func (c *AdminController) ListRooms(ctx *gin.Context) {
	rooms := c.registry.Rooms()
	ctx.JSON(http.StatusOK, gin.H{"rooms": converter.RoomsToApi(rooms)})
}

// Reset wipes all in-memory room state. For test environments.
func (c *AdminController) Reset(ctx *gin.Context) {
	n := c.registry.Reset()
	c.log.Warn("room state cleared", slog.Int("rooms", n))
	ctx.JSON(http.StatusOK, gin.H{"cleared": n})
}
