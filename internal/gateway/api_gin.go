package gateway

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aigents/relay/internal/metrics"
	"github.com/aigents/relay/internal/relay"
)

func (s *Server) registerRelayRoutes(engine *gin.Engine) {
	engine.POST("/webhook-relay", s.ginRelay)
	engine.GET("/webhook-relay/status", s.ginRelayStatus)
}

// ginRelay forwards one chat message to the webhook endpoints. The contract
// with the UI is "always return something renderable": a well-formed request
// gets HTTP 200 whether a real endpoint answered or the fallback did.
func (s *Server) ginRelay(c *gin.Context) {
	var req relay.InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Metrics.RecordRequest(metrics.ResultRejected)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "missing required fields: agent, message and typeMessage must all be present",
		})
		return
	}

	msg, err := relay.Normalize(req, s.webhooksConfig().MaxAudioBase64Bytes)
	if err != nil {
		s.Metrics.RecordRequest(metrics.ResultRejected)
		var verr *relay.ValidationError
		if errors.As(err, &verr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to process message",
			"details": err.Error(),
		})
		return
	}

	slog.Info("relaying message",
		"requestId", c.GetString("requestID"),
		"agent", msg.Agent,
		"type", msg.TypeMessage,
		"preview", preview(msg.Message, 30),
	)

	replies, err := s.Forwarder.Forward(c.Request.Context(), msg)
	switch {
	case err == nil:
		s.Metrics.RecordRequest(metrics.ResultDelivered)
		c.JSON(http.StatusOK, replies)

	case errors.Is(err, relay.ErrExhausted):
		s.Metrics.RecordRequest(metrics.ResultFallback)
		slog.Warn("all endpoints failed, using fallback reply",
			"requestId", c.GetString("requestID"),
			"agent", msg.Agent,
		)
		c.JSON(http.StatusOK, relay.FallbackFor(msg.Message))

	default:
		s.Metrics.RecordRequest(metrics.ResultError)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to relay message",
			"details": err.Error(),
		})
	}
}

// ginRelayStatus probes each endpoint in registry order and reports the
// results. The probe rotates the registry to the first reachable endpoint
// as a side effect, so subsequent relay traffic starts there.
func (s *Server) ginRelayStatus(c *gin.Context) {
	current, results := s.Prober.Probe(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"currentWebhook": current,
		"results":        results,
	})
}

// preview returns the first n runes of text for log lines, avoiding dumping
// full payloads (audio bodies run to hundreds of kilobytes). Truncation is
// rune-aware so accented characters are never split mid-sequence.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
