package net

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

// Follow dials a hub and calls onScene for every document it sends until
// ctx ends or the host hangs up. A clean shutdown returns ctx.Err().
func Follow(ctx context.Context, url string, onScene func(state.Document)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("follow %s: %w", url, err)
	}
	defer conn.Close()
	log.WithFields(log.Fields{"component": "follow", "url": url}).Info("connected to host")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("follow %s: %w", url, err)
		}
		switch msg.Type {
		case "scene":
			if msg.Document == nil {
				log.WithField("component", "follow").Warn("scene message without document")
				continue
			}
			onScene(*msg.Document)
		default:
			log.WithFields(log.Fields{"component": "follow", "type": msg.Type}).Debug("ignoring message")
		}
	}
}
