// Package preview streams rendered frames to browsers over WebSocket and
// accepts control messages for the attached background.
package preview

import (
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-gradient/internal/diagnostics"
	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

type Options struct {
	W, H     int
	Ratio    float64
	Throttle time.Duration // minimum gap between broadcast frames
	Soft     soft.Options
	Logger   *zerolog.Logger
}

// Hub is a pipeline.Surface whose presented frames go to WebSocket clients.
type Hub struct {
	mu       sync.RWMutex
	surf     *soft.Surface
	throttle time.Duration
	lastEmit time.Time
	log      zerolog.Logger

	bg  *widget.Background
	reg *widget.Registry

	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	// writes to a conn must not interleave
	wmu sync.Mutex
}

func NewHub(opts Options) *Hub {
	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}
	if opts.Throttle <= 0 {
		opts.Throttle = 50 * time.Millisecond
	}
	h := &Hub{
		throttle:    opts.Throttle,
		log:         lg.With().Str("surface", "preview").Logger(),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
	h.surf = &soft.Surface{W: opts.W, H: opts.H, Ratio: opts.Ratio, Opts: opts.Soft, Sink: h.emit}
	return h
}

// Attach points control messages at bg. reg, if set, serves panel messages.
func (h *Hub) Attach(bg *widget.Background, reg *widget.Registry) {
	h.mu.Lock()
	h.bg, h.reg = bg, reg
	h.mu.Unlock()
}

func (h *Hub) Context() (gpu.Device, error) { return h.surf.Context() }
func (h *Hub) Size() (int, int)             { return h.surf.Size() }
func (h *Hub) PixelRatio() float64          { return h.surf.PixelRatio() }
func (h *Hub) Present() error               { return h.surf.Present() }

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	RGB     []byte `json:"rgb"`
}

func (h *Hub) emit(img *image.RGBA) error {
	h.mu.Lock()
	h.frameID++
	now := time.Now()
	if h.lastEmit.Add(h.throttle).After(now) || len(h.clients) == 0 {
		h.mu.Unlock()
		return nil
	}
	h.lastEmit = now
	id := h.frameID
	h.mu.Unlock()

	b := img.Bounds()
	rgb := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			rgb = append(rgb, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	msg, err := json.Marshal(frame{T: now.UnixNano(), FrameID: id, W: b.Dx(), H: b.Dy(), RGB: rgb})
	if err != nil {
		return err
	}
	h.broadcast(h.clientList(false), msg)
	return nil
}

func (h *Hub) clientList(diagOnly bool) []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.clients
	if diagOnly {
		set = h.diagClients
	}
	out := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (h *Hub) broadcast(conns []*websocket.Conn, msg []byte) {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug().Err(err).Msg("write")
		}
	}
}

func (h *Hub) write(c *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.broadcast([]*websocket.Conn{c}, b)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// track registers conn in set and drops it when the peer goes away.
func (h *Hub) track(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	h.mu.Lock()
	set[conn] = true
	h.mu.Unlock()
	go func() {
		defer func() {
			h.mu.Lock()
			delete(set, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.track(conn, h.clients)
	h.write(conn, h.state())
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.track(conn, h.diagClients)
}

// HandleControlWS applies each JSON message and answers with the new state.
func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			h.PushDiag(diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.PARSE", Summary: "Bad control message", Detail: err.Error()})
			continue
		}
		for _, err := range h.ApplyControl(msg) {
			d := diag.FromError(err)
			if d.Code == "RUNTIME.ERROR" {
				d = diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.INVALID", Summary: "Control message rejected", Detail: err.Error()}
			}
			h.PushDiag(d)
		}
		h.write(conn, h.state())
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"clients":  len(h.clients),
	}
	bg := h.bg
	h.mu.RUnlock()
	if bg != nil {
		resp["background"] = bg.Stats()
		if err := bg.Err(); err != nil {
			resp["error"] = diag.FromError(err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler mounts the hub endpoints.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", h.HandleFramesWS)
	mux.HandleFunc("/ws/control", h.HandleControlWS)
	mux.HandleFunc("/ws/diag", h.HandleDiagWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// ApplyControl turns one control message into queued edits on the attached
// background. Keys: theme (+duration s), scroll, brightness, speed, darkMix,
// palette {dark1,dark2,light1,light2}, preset (+presetFade s), panel.
func (h *Hub) ApplyControl(msg map[string]any) []error {
	h.mu.RLock()
	bg, reg := h.bg, h.reg
	h.mu.RUnlock()
	if bg == nil {
		return []error{fmt.Errorf("no background attached")}
	}
	var errs []error
	if v, ok := msg["theme"].(string); ok {
		t, err := theme.ParseTheme(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			d := theme.RequestDuration
			if s, ok := msg["duration"].(float64); ok && s >= 0 {
				d = time.Duration(s * float64(time.Second))
			}
			bg.RequestTheme(t, d)
		}
	}
	if v, ok := msg["scroll"].(float64); ok {
		bg.ScrollProgress(v)
	}
	for _, k := range []string{"brightness", "speed", "darkMix"} {
		if v, ok := msg[k].(float64); ok {
			if err := bg.SetParam(k, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if v, ok := msg["palette"].(map[string]any); ok {
		hp := render.HexPalette{
			Dark1:  str(v["dark1"]),
			Dark2:  str(v["dark2"]),
			Light1: str(v["light1"]),
			Light2: str(v["light2"]),
		}
		p, err := hp.Apply(bg.Config().Palette)
		if err != nil {
			errs = append(errs, err)
		} else {
			bg.SetPalette(p)
		}
	}
	if v, ok := msg["preset"].(string); ok {
		var fade time.Duration
		if s, ok := msg["presetFade"].(float64); ok && s > 0 {
			fade = time.Duration(s * float64(time.Second))
		}
		if err := bg.ApplyPreset(v, fade); err != nil {
			errs = append(errs, err)
		}
	}
	if v, ok := msg["panel"].(string); ok && reg != nil {
		reg.HideOthers(v)
	}
	return errs
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

type stateMsg struct {
	W       int               `json:"w"`
	H       int               `json:"h"`
	Palette render.HexPalette `json:"palette"`
	Stats   widget.Stats      `json:"stats"`
	Panel   bool              `json:"panel"`
}

func (h *Hub) state() stateMsg {
	w, ht := h.surf.Size()
	h.mu.RLock()
	bg := h.bg
	h.mu.RUnlock()
	s := stateMsg{W: w, H: ht}
	if bg != nil {
		s.Palette = render.HexOf(bg.Config().Palette)
		s.Stats = bg.Stats()
		s.Panel = bg.PanelVisible()
	}
	return s
}

// PushDiag logs d and sends it to every diagnostics client.
func (h *Hub) PushDiag(d diag.Diagnostic) {
	diag.Log(&h.log, d)
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	h.broadcast(h.clientList(true), b)
}
