package service

import (
	"context"
	"errors"
	"testing"
)

type fake struct {
	name string
	err  error
	log  *[]string
}

func (f fake) Run()                           { *f.log = append(*f.log, "run "+f.name) }
func (f fake) Shutdown(context.Context) error { *f.log = append(*f.log, "stop "+f.name); return f.err }
func (f fake) String() string                 { return f.name }

func TestGroup(t *testing.T) {
	var log []string
	boom := errors.New("boom")

	var g Group
	g.Add(fake{"a", nil, &log}, fake{"b", boom, &log}, fake{"c", context.Canceled, &log})
	g.Start()
	err := g.Shutdown(context.Background())

	want := []string{"run a", "run b", "run c", "stop c", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("calls %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("call %d: %v, want %v", i, log[i], want[i])
		}
	}
	if !errors.Is(err, boom) {
		t.Errorf("shutdown error %v, want boom", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("canceled should be ignored: %v", err)
	}
}
