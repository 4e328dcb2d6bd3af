package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lib/service"
)

// ZapStreamController : Zap stream controller struct
type ZapStreamController struct {
	svc *service.SatstackerService
}

func NewZapStreamController(svc *service.SatstackerService) *ZapStreamController {
	return &ZapStreamController{svc: svc}
}

// StreamZaps streams the authenticated user's settled zaps as
// server-sent events. A keepalive comment goes out periodically so
// proxies do not cut the idle connection.
func (controller *ZapStreamController) StreamZaps(c echo.Context) error {
	userId := c.Get("UserID").(string)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	// buffered so publishes between writes are kept; the pubsub drops
	// events once the buffer is full rather than stall settlement
	zaps := make(chan models.Zap, 16)
	subId := controller.svc.ZapPubSub.Subscribe(userId, zaps)
	defer controller.svc.ZapPubSub.Unsubscribe(subId, userId)

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-keepalive.C:
			if _, err := fmt.Fprint(c.Response(), ": keepalive\n\n"); err != nil {
				return nil
			}
			c.Response().Flush()
		case zap, ok := <-zaps:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(zap)
			if err != nil {
				c.Logger().Errorf("Failed to encode zap event: zap_id:%s error:%v", zap.ID, err)
				continue
			}
			if _, err := fmt.Fprintf(c.Response(), "event: zap\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
