package display

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestRender(t *testing.T) {
	border := "+" + strings.Repeat("-", Columns) + "+\n"
	require.Equal(t,
		border+"|SD OK: 64 MB         |\n|Get FAT Volume 0: OK |\n"+border,
		Render("SD OK: 64 MB\nGet FAT Volume 0: OK\n"))

	long := strings.Repeat("x", Columns+3)
	require.Equal(t, "|"+long+"|", strings.Split(Render(long), "\n")[1])
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	c := &Console{W: &out}
	require.NoError(t, c.ShowText("Initializing ..."))
	require.Contains(t, out.String(), "|Initializing ...     |\n")
}

func TestMulti(t *testing.T) {
	var a, b Buffer
	failure := errors.New("offline")
	m := Multi{&a, Func(func(string) error { return failure }), &b}
	err := m.ShowText("frame")
	require.True(t, errors.Is(err, failure))
	require.Equal(t, "frame", a.Last())
	require.Equal(t, []string{"frame"}, b.Frames())
}

func TestWebSocket(t *testing.T) {
	ws := NewWebSocket("")
	require.NoError(t, ws.ShowText("first"))
	srv := httptest.NewServer(ws)
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	var frame string
	require.NoError(t, websocket.Message.Receive(conn, &frame))
	require.Equal(t, "first", frame)

	require.NoError(t, ws.ShowText("second"))
	require.NoError(t, websocket.Message.Receive(conn, &frame))
	require.Equal(t, "second", frame)
}
