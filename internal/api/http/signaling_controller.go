package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nqh2610/lophoconline-sub002/internal/service"
	"github.com/pion/webrtc/v3"
)

type SignalingController struct {
	signaling service.SignalingInteractor
}

func NewSignalingController(signaling service.SignalingInteractor) *SignalingController {
	return &SignalingController{signaling: signaling}
}

type signalRequest struct {
	Action          string                     `json:"action" binding:"required"`
	RoomID          string                     `json:"roomId"`
	PeerID          string                     `json:"peerId"`
	UserID          int64                      `json:"userId"`
	UserName        string                     `json:"userName"`
	Role            string                     `json:"role"`
	ToPeerID        string                     `json:"toPeerId"`
	TargetPeerID    string                     `json:"targetPeerId"`
	Offer           *webrtc.SessionDescription `json:"offer"`
	Answer          *webrtc.SessionDescription `json:"answer"`
	Candidate       *webrtc.ICECandidateInit   `json:"candidate"`
	Reason          string                     `json:"reason"`
	NewPeerID       string                     `json:"newPeerId"`
	Enabled         *bool                      `json:"enabled"`
	Mode            string                     `json:"mode"`
	BlurAmount      int                        `json:"blurAmount"`
	BackgroundImage string                     `json:"backgroundImage"`
}

// Signal dispatches one protocol action. Structurally invalid requests get a
// 400 with no side effects; expected absences come back as soft failures in
// the response payload.
func (c *SignalingController) Signal(ctx *gin.Context) {
	var req signalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.RoomID == "" || req.PeerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "roomId and peerId are required"})
		return
	}

	reqCtx := ctx.Request.Context()

	switch req.Action {
	case "join":
		result, err := c.signaling.Join(reqCtx, service.JoinRequest{
			RoomID:   req.RoomID,
			PeerID:   req.PeerID,
			UserID:   req.UserID,
			UserName: req.UserName,
			Role:     req.Role,
		})
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, result)

	case "offer":
		if req.Offer == nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "offer is required"})
			return
		}
		if err := c.signaling.Offer(reqCtx, req.RoomID, req.PeerID, *req.Offer, req.ToPeerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	case "answer":
		if req.Answer == nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "answer is required"})
			return
		}
		if err := c.signaling.Answer(reqCtx, req.RoomID, req.PeerID, *req.Answer, req.ToPeerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	case "ice":
		if req.Candidate == nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "candidate is required"})
			return
		}
		if err := c.signaling.Ice(reqCtx, req.RoomID, req.PeerID, *req.Candidate); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	case "poll":
		if req.TargetPeerID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "targetPeerId is required"})
			return
		}
		result, err := c.signaling.Poll(reqCtx, req.RoomID, req.PeerID, req.TargetPeerID)
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, result)

	case "leave":
		if err := c.signaling.Leave(reqCtx, req.RoomID, req.PeerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	case "refresh":
		if req.Reason == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
			return
		}
		if err := c.signaling.Refresh(reqCtx, req.RoomID, req.PeerID, req.Reason, req.NewPeerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	case "background-settings":
		if req.Enabled == nil || req.Mode == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "enabled and mode are required"})
			return
		}
		err := c.signaling.BackgroundSettings(reqCtx, service.BackgroundSettingsRequest{
			RoomID:          req.RoomID,
			PeerID:          req.PeerID,
			ToPeerID:        req.ToPeerID,
			Enabled:         *req.Enabled,
			Mode:            req.Mode,
			BlurAmount:      req.BlurAmount,
			BackgroundImage: req.BackgroundImage,
		})
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})

	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
	}
}

// ListPeers reports every other peer in the room. Clients in polling mode
// call it periodically, which doubles as their liveness heartbeat.
func (c *SignalingController) ListPeers(ctx *gin.Context) {
	roomID := ctx.Query("roomId")
	peerID := ctx.Query("peerId")
	if roomID == "" || peerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "roomId and peerId are required"})
		return
	}

	peers, err := c.signaling.ListPeers(ctx.Request.Context(), roomID, peerID)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"peers": peers})
}

func (c *SignalingController) fail(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidRequest) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
