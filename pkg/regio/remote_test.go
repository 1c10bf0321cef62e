package regio

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func startAgent(t *testing.T, sink Sink) *Remote {
	srv := httptest.NewServer(NewAgent(sink, nil))
	t.Cleanup(srv.Close)

	r, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRemote(t *testing.T) {
	mem := NewMem(0x100)
	r := startAgent(t, mem)

	for i := uint32(0); i < 8; i++ {
		if err := r.Write(i*4, 0x1000+i); err != nil {
			t.Fatal(err)
		}
	}
	v, err := r.Read(0x1c)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1007 {
		t.Errorf("read %#x, want 0x1007", v)
	}
	if n := len(mem.Writes()); n != 8 {
		t.Errorf("agent sink got %v writes, want 8", n)
	}
}

func TestRemoteErrors(t *testing.T) {
	mem := NewMem(0x100)
	r := startAgent(t, mem)

	var remoteErr *RemoteError
	if err := r.Write(0x200, 1); !errors.As(err, &remoteErr) {
		t.Errorf("out of range write: %v", err)
	}

	mem.FailAt(0, errors.New("bus error"))
	if err := r.Write(0, 1); !errors.As(err, &remoteErr) || !strings.Contains(remoteErr.Msg, "bus error") {
		t.Errorf("failed write: %v", err)
	}

	// the connection survives sink errors
	if _, err := r.Read(0); err != nil {
		t.Errorf("read after errors: %v", err)
	}

	_ = r.Close()
	if err := r.Write(0, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close: %v", err)
	}
}

// slowSink stalls its first write.
type slowSink struct {
	*Mem
	once  sync.Once
	delay time.Duration
}

func (s *slowSink) Write(offset, value uint32) error {
	s.once.Do(func() { time.Sleep(s.delay) })
	return s.Mem.Write(offset, value)
}

func TestRemoteTimeout(t *testing.T) {
	r := startAgent(t, &slowSink{Mem: NewMem(0x100), delay: 200 * time.Millisecond})
	r.SetTimeout(50 * time.Millisecond)

	err := r.Write(0, 1)
	if err == nil || errors.Is(err, ErrClosed) {
		t.Fatalf("slow write: %v, want a timeout", err)
	}

	r.SetTimeout(time.Second)
	for i := 0; i < 3; i++ {
		if err := r.Write(4, 2); !errors.Is(err, ErrClosed) {
			t.Errorf("write %v after timeout: %v, want ErrClosed", i, err)
		}
	}
	if _, err := r.Read(0); !errors.Is(err, ErrClosed) {
		t.Errorf("read after timeout: %v, want ErrClosed", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("close after timeout: %v", err)
	}
}

func TestAgentHandle(t *testing.T) {
	a := NewAgent(NewMem(0), nil)
	if rs := a.handle([]byte(`{"id":3,"op":"x"}`)); rs.Id != 3 || rs.Err == "" {
		t.Errorf("unknown op: %+v", rs)
	}
	if rs := a.handle([]byte(`not json`)); rs.Err == "" {
		t.Errorf("bad message accepted")
	}
	if rs := a.handle([]byte(`{"id":4,"op":"w","off":8,"val":5}`)); rs.Id != 4 || rs.Err != "" {
		t.Errorf("write: %+v", rs)
	}
	if rs := a.handle([]byte(`{"id":5,"op":"r","off":8}`)); rs.Val != 5 {
		t.Errorf("read: %+v", rs)
	}
}
