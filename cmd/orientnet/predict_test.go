package main

import (
	"errors"
	"testing"

	"github.com/ahmedtd/orientnet/toolbox"
)

func TestParseSample(t *testing.T) {
	got, err := parseSample([]string{"1320", "-1630.5", "1e3"})
	if err != nil {
		t.Fatalf("parseSample error: %v", err)
	}
	if want := (toolbox.Sample{1320, -1630.5, 1000}); got != want {
		t.Errorf("parseSample = %v, want %v", got, want)
	}

	if _, err := parseSample([]string{"1", "2"}); !errors.Is(err, toolbox.ErrShape) {
		t.Errorf("parseSample with 2 values error = %v, want ErrShape", err)
	}
	if _, err := parseSample([]string{"1", "x", "2"}); err == nil {
		t.Errorf("parseSample accepted a non-number")
	}
	if _, err := parseSample([]string{"1", "inf", "2"}); !errors.Is(err, toolbox.ErrNonFinite) {
		t.Errorf("parseSample with inf error = %v, want ErrNonFinite", err)
	}
}

func TestLoadNetworkDefault(t *testing.T) {
	net, err := loadNetwork("")
	if err != nil {
		t.Fatalf("loadNetwork error: %v", err)
	}
	if net.Classes() != 6 {
		t.Errorf("Classes() = %d, want 6", net.Classes())
	}
}
