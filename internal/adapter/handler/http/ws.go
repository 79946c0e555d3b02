package http

import (
	"github.com/gin-gonic/gin"
	"github.com/ontoptea/orderhub/internal/adapter/notifier"
)

type WSHandler struct {
	hub *notifier.Hub
}

func NewWSHandler(hub *notifier.Hub) (*WSHandler, error) {
	return &WSHandler{hub: hub}, nil
}

// Subscribe upgrades the connection and hands it to the hub. Clients join
// their room (production / print-client) with a first message.
func (wh *WSHandler) Subscribe(ctx *gin.Context) {
	wh.hub.HandleConnection(ctx.Writer, ctx.Request)
}
