package regio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/sunxi-defe/defe/pkg/logger"
)

const (
	opRead  = "r"
	opWrite = "w"

	maxMessageSize = 1024
	defaultTimeout = 5 * time.Second
)

type request struct {
	Id  uint64 `json:"id"`
	Op  string `json:"op"`
	Off uint32 `json:"off"`
	Val uint32 `json:"val,omitempty"`
}

type response struct {
	Id  uint64 `json:"id"`
	Val uint32 `json:"val,omitempty"`
	Err string `json:"err,omitempty"`
}

// RemoteError is an error reported by the agent's sink.
type RemoteError struct{ Msg string }

func (e *RemoteError) Error() string { return "remote: " + e.Msg }

// Remote is a register sink on the other side of a websocket, served by an
// Agent. Every access is a blocking round trip.
type Remote struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	seq     uint64
	timeout time.Duration
}

// Dial connects to an agent at a ws:// or wss:// address.
func Dial(ctx context.Context, address string) (*Remote, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %v: %w", address, err)
	}
	conn.SetReadLimit(maxMessageSize)
	return &Remote{conn: conn, timeout: defaultTimeout}, nil
}

// SetTimeout limits a single round trip.
func (r *Remote) SetTimeout(d time.Duration) { r.timeout = d }

func (r *Remote) call(op string, off, val uint32) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return 0, ErrClosed
	}

	r.seq++
	rq, err := json.Marshal(request{Id: r.seq, Op: op, Off: off, Val: val})
	if err != nil {
		return 0, err
	}
	rs, err := r.roundTrip(rq)
	if err != nil {
		// a failed websocket read or write is permanent
		_ = r.conn.Close()
		r.conn = nil
		return 0, fmt.Errorf("remote %v %#x: %w", op, off, err)
	}
	if rs.Err != "" {
		return 0, &RemoteError{Msg: rs.Err}
	}
	return rs.Val, nil
}

func (r *Remote) roundTrip(rq []byte) (rs response, err error) {
	_ = r.conn.SetWriteDeadline(time.Now().Add(r.timeout))
	if err = r.conn.WriteMessage(websocket.TextMessage, rq); err != nil {
		return
	}
	_ = r.conn.SetReadDeadline(time.Now().Add(r.timeout))
	_, msg, err := r.conn.ReadMessage()
	if err != nil {
		return
	}
	if err = json.Unmarshal(msg, &rs); err != nil {
		return
	}
	if rs.Id != r.seq {
		err = fmt.Errorf("response %v to request %v", rs.Id, r.seq)
	}
	return
}

func (r *Remote) Write(offset, value uint32) error {
	_, err := r.call(opWrite, offset, value)
	return err
}

func (r *Remote) Read(offset uint32) (uint32, error) { return r.call(opRead, offset, 0) }

func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := r.conn.Close()
	r.conn = nil
	return err
}

// Agent serves a sink to Remote clients. Accesses from all connections go
// to the sink one at a time.
type Agent struct {
	mu       sync.Mutex
	sink     Sink
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewAgent(sink Sink, log *logger.Logger) *Agent {
	if log == nil {
		log = logger.Default()
	}
	return &Agent{
		sink: sink,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessageSize,
			WriteBufferSize: maxMessageSize,
		},
	}
}

func (a *Agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxMessageSize)

	log := a.log.Extend(a.log.With().Str("cid", uuid.Must(uuid.NewV4()).String()[:8]))
	log.Info().Msgf("connect %v", r.RemoteAddr)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read")
			}
			break
		}
		rs := a.handle(msg)
		if rs.Err != "" {
			log.Warn().Msg(rs.Err)
		}
		out, err := json.Marshal(rs)
		if err != nil {
			log.Error().Err(err).Send()
			break
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			log.Warn().Err(err).Msg("write")
			break
		}
	}
	log.Info().Msg("disconnect")
}

func (a *Agent) handle(msg []byte) (rs response) {
	var rq request
	if err := json.Unmarshal(msg, &rq); err != nil {
		rs.Err = err.Error()
		return
	}
	rs.Id = rq.Id

	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	switch rq.Op {
	case opWrite:
		err = a.sink.Write(rq.Off, rq.Val)
		a.log.Debug().
			Str(logger.OffsetField, fmt.Sprintf("%#x", rq.Off)).
			Str(logger.ValueField, fmt.Sprintf("%#x", rq.Val)).
			Msg("set")
	case opRead:
		rs.Val, err = a.sink.Read(rq.Off)
	default:
		err = errors.New("unknown op " + rq.Op)
	}
	if err != nil {
		rs.Err = err.Error()
	}
	return
}
