package xun

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/xunconfig"
)

// f(x) = x + 1; main(x): y = f(x); return y * 2
func buildMainImage(t *testing.T) *Func {
	t.Helper()

	f := Define("pkg.f", "x").
		Body(Expr(Add(Name("x"), Int(1))))
	fImg, err := f.Image()
	if err != nil {
		t.Fatalf("f.Image: %v", err)
	}

	main := Define("pkg.main", "x").
		Constants(Bind(Name("y")).From(Call("f", Name("x")))).
		Body(Expr(Mul(Name("y"), Int(2)))).
		DependsOn("f", fImg)
	return main
}

func TestRunEndToEnd(t *testing.T) {
	main := buildMainImage(t)
	mainImg, err := main.Image()
	if err != nil {
		t.Fatalf("main.Image: %v", err)
	}

	out, err := Run(mainImg, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != 12 {
		t.Fatalf("out = %v, want 12", out)
	}
}

func TestRunnerWithQueuedDriver(t *testing.T) {
	main := buildMainImage(t)
	mainImg, err := main.Image()
	if err != nil {
		t.Fatalf("main.Image: %v", err)
	}

	cfg, err := xunconfig.ParseConfig([]byte("driver: queued\nworkers: 2\n"), "xun.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	runner, err := New(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := runner.Run(mainImg, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != 12 {
		t.Fatalf("out = %v, want 12", out)
	}
}

func TestBindSingleTargetPromotesName(t *testing.T) {
	stmt := Bind(Name("a")).From(Int(1))
	if stmt.Target.String() != "a" {
		t.Fatalf("Target = %q, want %q", stmt.Target.String(), "a")
	}
}

func TestBindMultipleTargetsProducesTupleTarget(t *testing.T) {
	stmt := Bind(Tuple(Name("a"), Name("b")), Name("c")).From(Call("f"))
	want := "((a, b), c)"
	if stmt.Target.String() != want {
		t.Fatalf("Target = %q, want %q", stmt.Target.String(), want)
	}
}

func TestStarTargetAbsorbsSlack(t *testing.T) {
	stmt := Bind(Name("head"), Star(Name("body")), Name("foot")).From(Call("f"))
	want := "(head, *body, foot)"
	if stmt.Target.String() != want {
		t.Fatalf("Target = %q, want %q", stmt.Target.String(), want)
	}
}
