package rootfind

import (
	"math"
	"testing"
)

func TestBisectFindsRoot(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	res, err := Bisect(f, 0, 2, 1e-12, 100)
	if err != nil {
		t.Fatalf("Bisect: %v", err)
	}
	if math.Abs(res.Root-math.Sqrt2) > 1e-6 {
		t.Fatalf("root = %v, want ~%v", res.Root, math.Sqrt2)
	}
}

func TestBisectRequiresSignChange(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	if _, err := Bisect(f, -1, 1, 1e-9, 50); err == nil {
		t.Fatal("expected bracket error")
	}
}

func TestNewtonWithBisectionConverges(t *testing.T) {
	fd := func(x float64) (float64, float64) { return x*x - 2, 2 * x }
	res, err := NewtonWithBisection(fd, 1.0, NewtonOptions{Lower: 0, Upper: 2})
	if err != nil {
		t.Fatalf("NewtonWithBisection: %v", err)
	}
	if math.Abs(res.Root-math.Sqrt2) > 1e-6 {
		t.Fatalf("root = %v, want ~%v", res.Root, math.Sqrt2)
	}
}

func TestNewtonFallsBackOnZeroDerivative(t *testing.T) {
	fd := func(x float64) (float64, float64) { return x*x*x - 8, 0 }
	res, err := NewtonWithBisection(fd, 1.0, NewtonOptions{Lower: 0, Upper: 4, TolValue: 1e-9})
	if err != nil {
		t.Fatalf("NewtonWithBisection: %v", err)
	}
	if math.Abs(res.Root-2) > 1e-4 {
		t.Fatalf("root = %v, want ~2", res.Root)
	}
}

func TestAutoBracketExpands(t *testing.T) {
	f := func(x float64) float64 { return x - 5 }
	a, b, err := AutoBracket(f, 0, -1, 1, 1.8, 20)
	if err != nil {
		t.Fatalf("AutoBracket: %v", err)
	}
	if a > 5 || b < 5 {
		t.Fatalf("bracket (%v,%v) does not contain root 5", a, b)
	}
}
