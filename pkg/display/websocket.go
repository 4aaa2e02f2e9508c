package display

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/sdlog/pkg/framework"
)

// WebSocket pushes frames to websocket clients. A client receives the
// current frame when it connects.
type WebSocket struct {
	// Addr is the listen address used by Run.
	Addr string

	lock    sync.Mutex
	last    string
	clients map[*websocket.Conn]chan string
}

// NewWebSocket creates a WebSocket display served on addr by Run.
func NewWebSocket(addr string) *WebSocket {
	return &WebSocket{Addr: addr}
}

// ShowText implements Display. Clients too slow to keep up miss frames.
func (w *WebSocket) ShowText(text string) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.last = text
	for conn, ch := range w.clients {
		select {
		case ch <- text:
		default:
			glog.V(2).Infof("websocket %s: frame dropped", conn.Request().RemoteAddr)
		}
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (w *WebSocket) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	websocket.Handler(w.serve).ServeHTTP(rw, req)
}

func (w *WebSocket) serve(conn *websocket.Conn) {
	ch := make(chan string, 4)
	w.lock.Lock()
	if w.clients == nil {
		w.clients = make(map[*websocket.Conn]chan string)
	}
	w.clients[conn] = ch
	last := w.last
	w.lock.Unlock()
	defer func() {
		w.lock.Lock()
		delete(w.clients, conn)
		w.lock.Unlock()
	}()

	glog.V(2).Infof("websocket %s connected", conn.Request().RemoteAddr)
	closed := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()

	frame := last
	for {
		if err := websocket.Message.Send(conn, frame); err != nil {
			glog.V(2).Infof("websocket %s: %v", conn.Request().RemoteAddr, err)
			return
		}
		select {
		case frame = <-ch:
		case <-closed:
			return
		}
	}
}

// Run implements framework.Runnable, serving on Addr until ctx is done.
func (w *WebSocket) Run(ctx context.Context) error {
	srv := &http.Server{Addr: w.Addr, Handler: w}
	glog.Infof("websocket display on %s", w.Addr)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}
