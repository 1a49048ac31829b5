package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("BMU_TEST_INT", "nope")
	if got := Int("BMU_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("BMU_TEST_INT", " 42 ")
	if got := Int("BMU_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("BMU_TEST_DUR", "15")
	if got := Duration("BMU_TEST_DUR", time.Second, nil); got != 15*time.Second {
		t.Fatalf("Duration(15): got=%s", got)
	}
	t.Setenv("BMU_TEST_DUR", "250ms")
	if got := Duration("BMU_TEST_DUR", time.Second, nil); got != 250*time.Millisecond {
		t.Fatalf("Duration(250ms): got=%s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("BMU_TEST_BOOL", "off")
	if Bool("BMU_TEST_BOOL", true, nil) {
		t.Fatalf("Bool(off) should be false")
	}
	t.Setenv("BMU_TEST_LIST", "a, ,b,")
	got := List("BMU_TEST_LIST", nil, nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
	if got := String("BMU_TEST_UNSET_FOR_SURE", "dflt", nil); got != "dflt" {
		t.Fatalf("String default: got=%q", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("BMU_TEST_FLOAT", "0.25")
	if got := Float("BMU_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	t.Setenv("BMU_TEST_FLOAT", "half")
	if got := Float("BMU_TEST_FLOAT", 1, nil); got != 1 {
		t.Fatalf("Float(garbage): want default, got=%v", got)
	}
}
