package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	docHandler "ignita/internal/document"
	"ignita/internal/document/model"
	"ignita/pkg/logger"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxMessageSize = 1 << 20
	// Calls a connection may have running at once; further frames wait
	// unread until one finishes.
	maxInFlight = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the token, not the handshake.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dispatcher runs a named procedure on behalf of a user.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, procedure string, input json.RawMessage) (docHandler.Response, error)
}

// Request is a procedure call sent by the browser.
type Request struct {
	ID        string          `json:"id"`
	Procedure string          `json:"procedure"`
	Input     json.RawMessage `json:"input,omitempty"`
}

// Reply answers the Request with the same ID, on the same connection only.
type Reply struct {
	ID string `json:"id"`
	docHandler.Response
}

// Client is one WebSocket connection. Calls are handled concurrently and
// replies may arrive out of order; the ID pairs them up.
type Client struct {
	Dispatcher Dispatcher
	Conn       *websocket.Conn
	UserID     string
	Send       chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	calls  errgroup.Group
}

func ServeWs(d Dispatcher, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		Dispatcher: d,
		Conn:       conn,
		UserID:     userID,
		Send:       make(chan []byte, 256),
		ctx:        ctx,
		cancel:     cancel,
	}
	client.calls.SetLimit(maxInFlight)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.calls.Wait()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var req Request
		if err := json.Unmarshal(rawMessage, &req); err != nil {
			logger.Sugar.Infof("Error unmarshalling request from %s: %v", c.UserID, err)
			c.reply(Reply{Response: docHandler.Response{
				Error: model.NewError(model.CodeBadRequest, "invalid request frame", nil),
			}})
			continue
		}
		c.calls.Go(func() error {
			c.handle(req)
			return nil
		})
	}
}

func (c *Client) handle(req Request) {
	resp, err := c.Dispatcher.Dispatch(c.ctx, c.UserID, req.Procedure, req.Input)
	if err != nil {
		resp = docHandler.Response{Error: model.AsError(err)}
	}
	c.reply(Reply{ID: req.ID, Response: resp})
}

func (c *Client) reply(r Reply) {
	payload, err := json.Marshal(r)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling reply %s: %v", r.ID, err)
		return
	}
	select {
	case c.Send <- payload:
	case <-c.ctx.Done():
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		case <-c.ctx.Done():
			return
		}
	}
}
