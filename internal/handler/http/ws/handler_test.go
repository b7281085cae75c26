package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catchup-feed/internal/dispatch"
	"catchup-feed/internal/handler/http/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHandler_UpgradeAndRegister(t *testing.T) {
	registry := dispatch.NewRegistry()
	mux := http.NewServeMux()
	ws.Register(mux, registry)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/articles?topic=tariffs"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return registry.Count() == 1
	}, time.Second, 10*time.Millisecond)
}
